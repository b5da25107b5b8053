package main

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"github.com/phyten/tagfilter/internal/config"
	"github.com/phyten/tagfilter/internal/engine"
	"github.com/phyten/tagfilter/internal/termcolor"
)

// app holds the state shared by every subcommand: the global flags and the
// environment they are resolved against.
type app struct {
	configPath string
	color      string
	getenv     func(string) string
	environ    func() []string
}

func (a *app) explicitConfig() string {
	if p := strings.TrimSpace(a.configPath); p != "" {
		return p
	}
	return strings.TrimSpace(a.getenv("TAGFILTER_CONFIG"))
}

// locate finds the settings file. An explicit path that does not exist yet is
// returned as-is so the first write can create it.
func (a *app) locate() (path, where string, exists bool, err error) {
	explicit := a.explicitConfig()
	cwd, err := os.Getwd()
	if err != nil {
		return "", "", false, err
	}
	path, where, err = config.Find(cwd, explicit, a.getenv("XDG_CONFIG_HOME"), a.getenv("HOME"))
	if err != nil {
		if explicit != "" && errors.Is(err, fs.ErrNotExist) {
			path, err = config.DefaultPath(explicit, "", "")
			return path, "explicit", false, err
		}
		return "", "", false, err
	}
	return path, where, path != "", nil
}

// snapshot resolves defaults, the settings file and the environment.
func (a *app) snapshot() (config.Snapshot, error) {
	path, where, exists, err := a.locate()
	if err != nil {
		return config.Snapshot{}, err
	}
	if !exists {
		snap, err := config.Resolve("", where, a.getenv)
		snap.Path = path
		return snap, err
	}
	return config.Resolve(path, where, a.getenv)
}

// fileSettings loads only the settings file layer, for commands that edit
// and write it back. Environment overrides must not leak into the file.
func (a *app) fileSettings() (string, config.Settings, error) {
	path, _, exists, err := a.locate()
	if err != nil {
		return "", config.Settings{}, err
	}
	if path == "" {
		path, err = config.DefaultPath("", a.getenv("XDG_CONFIG_HOME"), a.getenv("HOME"))
		if err != nil {
			return "", config.Settings{}, err
		}
	}
	var fileCfg config.Config
	if exists {
		fileCfg, err = config.Load(path)
		if err != nil {
			return "", config.Settings{}, err
		}
	}
	settings, err := config.NormalizeSettings(config.MergeSettings(config.DefaultSettings(), fileCfg.Filter))
	if err != nil {
		return "", config.Settings{}, err
	}
	return path, settings, nil
}

func (a *app) save(cmd *cobra.Command, path string, settings config.Settings) error {
	settings, err := config.NormalizeSettings(settings)
	if err != nil {
		return err
	}
	if err := config.Save(path, settings); err != nil {
		return err
	}
	pslog.Ctx(cmd.Context()).Debug("settings saved", "path", path, "tags", len(settings.Tags))
	return nil
}

func (a *app) engine(cmd *cobra.Command) engine.Engine {
	return engine.Engine{Log: pslog.Ctx(cmd.Context())}
}

// painter resolves --color, then the configured colour, against out.
func (a *app) painter(out io.Writer, configured string) (termcolor.Painter, error) {
	raw := a.color
	if strings.TrimSpace(raw) == "" {
		raw = configured
	}
	mode, err := termcolor.ParseMode(raw)
	if err != nil {
		return termcolor.Painter{}, err
	}
	return termcolor.NewPainter(mode, out, termcolor.EnvMap(a.environ())), nil
}

// readText reads the named file, or stdin when name is empty or "-".
func readText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	data, err := os.ReadFile(args[0])
	return string(data), err
}

func warnProblems(cmd *cobra.Command, settings config.Settings) {
	for _, p := range settings.Problems() {
		pslog.Ctx(cmd.Context()).Warn("tag skipped", "problem", p.String())
	}
}
