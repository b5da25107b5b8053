package config

import (
	"errors"
	"math"
	"strings"

	"github.com/phyten/tagfilter/internal/engine/opts"
)

func FromEnv(getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	var cfg Config
	var errs []error

	setString := func(target **string, key string) {
		raw := strings.TrimSpace(getenv(key))
		if raw == "" {
			return
		}
		value := raw
		*target = &value
	}
	setBool := func(target **bool, key string) {
		raw := strings.TrimSpace(getenv(key))
		if raw == "" {
			return
		}
		v, err := opts.ParseBool(raw, key)
		if err != nil {
			errs = append(errs, err)
			return
		}
		value := v
		*target = &value
	}
	setInt := func(target **int, key string, min, max int) {
		raw := strings.TrimSpace(getenv(key))
		if raw == "" {
			return
		}
		v, err := opts.ParseIntInRange(raw, key, min, max)
		if err != nil {
			errs = append(errs, err)
			return
		}
		value := v
		*target = &value
	}

	setBool(&cfg.Filter.Enabled, "TAGFILTER_ENABLED")
	setBool(&cfg.Filter.ShowContext, "TAGFILTER_SHOW_CONTEXT")
	if raw := strings.TrimSpace(getenv("TAGFILTER_EXCLUDED_PROMPTS")); raw != "" {
		list, err := opts.ParseIndexList([]string{raw}, "TAGFILTER_EXCLUDED_PROMPTS")
		if err != nil {
			errs = append(errs, err)
		} else {
			cfg.Filter.ExcludedPrompts = &list
		}
	}

	setString(&cfg.UI.Output, "TAGFILTER_OUTPUT")
	setString(&cfg.UI.Color, "TAGFILTER_COLOR")
	setBool(&cfg.UI.Highlight, "TAGFILTER_HIGHLIGHT")
	setInt(&cfg.UI.Truncate, "TAGFILTER_TRUNCATE", 0, math.MaxInt)
	// Upper bound is enforced by NormalizeUI so every input path shares one message.
	setInt(&cfg.UI.Jobs, "TAGFILTER_JOBS", 0, math.MaxInt)

	if len(errs) > 0 {
		return cfg, errors.Join(errs...)
	}
	return cfg, nil
}
