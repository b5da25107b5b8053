package config

import (
	"strings"

	"github.com/phyten/tagfilter/internal/model"
)

// MergeSettings applies layers over base in order; later layers win.
func MergeSettings(base Settings, layers ...FilterConfig) Settings {
	out := base
	for _, layer := range layers {
		out.Enabled = ResolveBool(out.Enabled, layer.Enabled)
		out.ShowContext = ResolveBool(out.ShowContext, layer.ShowContext)
		out.ExcludedPrompts = ResolveInts(out.ExcludedPrompts, layer.ExcludedPrompts)
		out.Tags = ResolveTags(out.Tags, layer.Tags)
	}
	if out.ExcludedPrompts == nil {
		out.ExcludedPrompts = []int{}
	}
	if out.Tags == nil {
		out.Tags = []model.Tag{}
	}
	return out
}

func MergeUI(base UISettings, layers ...UIConfig) UISettings {
	out := base
	for _, layer := range layers {
		out.Output = ResolveAndTrim(out.Output, layer.Output)
		out.Color = ResolveAndTrim(out.Color, layer.Color)
		out.Highlight = ResolveBool(out.Highlight, layer.Highlight)
		out.Truncate = ResolveInt(out.Truncate, layer.Truncate)
		out.Jobs = ResolveInt(out.Jobs, layer.Jobs)
	}
	if strings.TrimSpace(out.Output) == "" {
		out.Output = "table"
	}
	if strings.TrimSpace(out.Color) == "" {
		out.Color = "auto"
	}
	return out
}
