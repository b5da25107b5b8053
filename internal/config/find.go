package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	configFilenames = []string{
		".tagfilter.yaml",
		".tagfilter.yml",
		".tagfilter.toml",
		".tagfilter.json",
	}
	xdgFilenames = []string{
		"config.yaml",
		"config.yml",
		"config.toml",
		"config.json",
	}
)

// Find locates the settings file. The second return value tells where it was
// found: "explicit", "cwd-up", "xdg" or "home". No file is not an error.
func Find(startDir, explicitPath, xdgHome, home string) (string, string, error) {
	if explicit := strings.TrimSpace(explicitPath); explicit != "" {
		candidate, err := absPath(explicit)
		if err != nil {
			return "", "", err
		}
		info, err := os.Stat(candidate)
		if err != nil {
			return "", "", err
		}
		if info.IsDir() {
			return "", "", fmt.Errorf("TAGFILTER_CONFIG %q points to a directory", candidate)
		}
		return candidate, "explicit", nil
	}

	start := strings.TrimSpace(startDir)
	if start == "" {
		start = "."
	}
	absStart, err := filepath.Abs(start)
	if err != nil {
		return "", "", err
	}
	dir := absStart
	for {
		for _, name := range configFilenames {
			candidate := filepath.Join(dir, name)
			if fileExists(candidate) {
				return candidate, "cwd-up", nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if xdgRoot := xdgRoot(xdgHome, home); xdgRoot != "" {
		for _, name := range xdgFilenames {
			candidate := filepath.Join(xdgRoot, "tagfilter", name)
			if fileExists(candidate) {
				return candidate, "xdg", nil
			}
		}
	}

	if homeDir := homeDir(home); homeDir != "" {
		for _, name := range configFilenames {
			candidate := filepath.Join(homeDir, name)
			if fileExists(candidate) {
				return candidate, "home", nil
			}
		}
	}

	return "", "", nil
}

// DefaultPath is where a new settings file is created when Find came back
// empty and something has to be saved.
func DefaultPath(explicitPath, xdgHome, home string) (string, error) {
	if explicit := strings.TrimSpace(explicitPath); explicit != "" {
		return absPath(explicit)
	}
	root := xdgRoot(xdgHome, home)
	if root == "" {
		return "", fmt.Errorf("cannot determine a config directory: set TAGFILTER_CONFIG or HOME")
	}
	return filepath.Join(root, "tagfilter", "config.yaml"), nil
}

func absPath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, p), nil
}

func xdgRoot(xdgHome, home string) string {
	if root := strings.TrimSpace(xdgHome); root != "" {
		return root
	}
	if h := homeDir(home); h != "" {
		return filepath.Join(h, ".config")
	}
	return ""
}

func homeDir(home string) string {
	if h := strings.TrimSpace(home); h != "" {
		return h
	}
	if h, err := os.UserHomeDir(); err == nil {
		return h
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
