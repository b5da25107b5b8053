package config

import (
	"strings"

	"github.com/phyten/tagfilter/internal/engine/opts"
	"github.com/phyten/tagfilter/internal/model"
)

// FilterConfig is one layer of filter settings. Nil fields are unset.
type FilterConfig struct {
	Enabled         *bool        `yaml:"enabled" toml:"enabled" json:"enabled"`
	ShowContext     *bool        `yaml:"show_context" toml:"show_context" json:"show_context"`
	ExcludedPrompts *[]int       `yaml:"excluded_prompts" toml:"excluded_prompts" json:"excluded_prompts"`
	Tags            *[]model.Tag `yaml:"tags" toml:"tags" json:"tags"`
}

type UIConfig struct {
	Output    *string `yaml:"output,omitempty" toml:"output,omitempty" json:"output,omitempty"`
	Color     *string `yaml:"color,omitempty" toml:"color,omitempty" json:"color,omitempty"`
	Highlight *bool   `yaml:"highlight,omitempty" toml:"highlight,omitempty" json:"highlight,omitempty"`
	Truncate  *int    `yaml:"truncate,omitempty" toml:"truncate,omitempty" json:"truncate,omitempty"`
	Jobs      *int    `yaml:"jobs,omitempty" toml:"jobs,omitempty" json:"jobs,omitempty"`
}

type Config struct {
	Filter FilterConfig `yaml:"filter" toml:"filter" json:"filter"`
	UI     UIConfig     `yaml:"ui" toml:"ui" json:"ui"`
}

// Settings is the resolved filter state. It is passed explicitly to every
// operation that needs it; nothing in this module keeps a global copy.
type Settings struct {
	Enabled         bool
	ShowContext     bool
	ExcludedPrompts []int
	Tags            []model.Tag
}

type UISettings struct {
	Output    string
	Color     string
	Highlight bool
	Truncate  int
	Jobs      int
}

// DefaultSettings mirrors a freshly installed extension: filtering on,
// context viewer on, no tags.
func DefaultSettings() Settings {
	return Settings{
		Enabled:         true,
		ShowContext:     true,
		ExcludedPrompts: []int{},
		Tags:            []model.Tag{},
	}
}

func UISettingsFromOptions(o opts.Options) UISettings {
	return UISettings{
		Output:    o.Output,
		Color:     "auto",
		Highlight: o.Highlight,
		Truncate:  o.Truncate,
		Jobs:      o.Jobs,
	}
}

func (s UISettings) ApplyToOptions(o *opts.Options) {
	if o == nil {
		return
	}
	if trimmed := strings.TrimSpace(s.Output); trimmed != "" {
		o.Output = trimmed
	}
	o.Highlight = s.Highlight
	o.Truncate = s.Truncate
	o.Jobs = s.Jobs
}

// IsExcluded reports whether paragraph index i bypasses filtering.
func (s Settings) IsExcluded(i int) bool {
	for _, idx := range s.ExcludedPrompts {
		if idx == i {
			return true
		}
	}
	return false
}

// Exclude returns a copy of s with paragraph i excluded from filtering.
func (s Settings) Exclude(i int) Settings {
	if i < 0 || s.IsExcluded(i) {
		return s
	}
	out := s
	out.ExcludedPrompts = append(cloneInts(s.ExcludedPrompts), i)
	return out
}

// Include returns a copy of s with paragraph i filtered again.
func (s Settings) Include(i int) Settings {
	out := s
	out.ExcludedPrompts = make([]int, 0, len(s.ExcludedPrompts))
	for _, idx := range s.ExcludedPrompts {
		if idx != i {
			out.ExcludedPrompts = append(out.ExcludedPrompts, idx)
		}
	}
	return out
}

func cloneInts(in []int) []int {
	out := make([]int, len(in))
	copy(out, in)
	return out
}
