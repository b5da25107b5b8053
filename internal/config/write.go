package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/phyten/tagfilter/internal/model"
)

type document struct {
	Enabled         bool        `yaml:"enabled" toml:"enabled" json:"enabled"`
	ShowContext     bool        `yaml:"show_context" toml:"show_context" json:"show_context"`
	ExcludedPrompts []int       `yaml:"excluded_prompts" toml:"excluded_prompts" json:"excluded_prompts"`
	Tags            []model.Tag `yaml:"tags" toml:"tags" json:"tags"`
	UI              *UIConfig   `yaml:"ui,omitempty" toml:"ui,omitempty" json:"ui,omitempty"`
}

// Save writes s to path in the format implied by its extension. UI keys
// already present in the file are carried over. The write goes through a
// temporary file in the same directory and a rename.
func Save(path string, s Settings) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("save: empty path")
	}
	format := formatOf(path)
	if format == "" {
		return fmt.Errorf("unsupported config extension: %s", filepath.Ext(path))
	}

	doc := document{
		Enabled:         s.Enabled,
		ShowContext:     s.ShowContext,
		ExcludedPrompts: cloneInts(s.ExcludedPrompts),
		Tags:            model.CloneTags(s.Tags),
	}
	if doc.Tags == nil {
		doc.Tags = []model.Tag{}
	}
	existing, err := Load(path)
	switch {
	case err == nil:
		if existing.UI != (UIConfig{}) {
			ui := existing.UI
			doc.UI = &ui
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return err
	}

	data, err := encode(format, doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return writeAtomic(path, data)
}

func encode(format string, doc document) ([]byte, error) {
	switch format {
	case "yaml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "toml":
		return toml.Marshal(doc)
	default:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
