package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/phyten/tagfilter/internal/engine/opts"
	"github.com/phyten/tagfilter/internal/model"
)

var filterKeyMap = map[string]string{
	"enabled":          "enabled",
	"filter_enabled":   "enabled",
	"show_context":     "show_context",
	"context":          "show_context",
	"excluded_prompts": "excluded_prompts",
	"excluded":         "excluded_prompts",
	"tags":             "tags",
	"custom_tags":      "tags",
}

var uiKeyMap = map[string]string{
	"output":    "output",
	"color":     "color",
	"colour":    "color",
	"highlight": "highlight",
	"truncate":  "truncate",
	"jobs":      "jobs",
}

var tagKeyMap = map[string]string{
	"id":        "id",
	"name":      "name",
	"open":      "open_tag",
	"opentag":   "open_tag",
	"open_tag":  "open_tag",
	"close":     "close_tag",
	"closetag":  "close_tag",
	"close_tag": "close_tag",
	"enabled":   "enabled",
}

// Load decodes the settings file at path. An empty path yields an empty
// Config so callers can merge it unconditionally.
func Load(path string) (Config, error) {
	var cfg Config
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	raw, err := decodeRaw(path, data)
	if err != nil {
		return cfg, err
	}
	if raw == nil {
		return cfg, nil
	}
	decoded, err := decodeConfigMap(raw)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return decoded, nil
}

func decodeRaw(path string, data []byte) (map[string]any, error) {
	var raw map[string]any
	switch ext := formatOf(path); ext {
	case "yaml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case "toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case "json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config extension: %s", filepath.Ext(path))
	}
	return raw, nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	case ".json":
		return "json"
	default:
		return ""
	}
}

func decodeConfigMap(raw map[string]any) (Config, error) {
	var cfg Config
	filterSection := make(map[string]any)
	uiSection := make(map[string]any)

	if block, ok := raw["filter"]; ok {
		sub, err := toStringKeyMap(block)
		if err != nil {
			return cfg, fmt.Errorf("filter: %w", err)
		}
		if err := fillSection(filterSection, sub, filterKeyMap, "filter"); err != nil {
			return cfg, err
		}
	}
	if block, ok := raw["ui"]; ok {
		sub, err := toStringKeyMap(block)
		if err != nil {
			return cfg, fmt.Errorf("ui: %w", err)
		}
		if err := fillSection(uiSection, sub, uiKeyMap, "ui"); err != nil {
			return cfg, err
		}
	}

	for key, value := range raw {
		norm := normalizeKey(key)
		switch norm {
		case "filter", "ui":
			continue
		default:
			if canonical, ok := filterKeyMap[norm]; ok {
				filterSection[canonical] = value
				continue
			}
			if canonical, ok := uiKeyMap[norm]; ok {
				uiSection[canonical] = value
				continue
			}
			return cfg, fmt.Errorf("unknown config key: %s", key)
		}
	}

	if err := assignFilter(filterSection, &cfg.Filter); err != nil {
		return cfg, fmt.Errorf("filter: %w", err)
	}
	if err := assignUI(uiSection, &cfg.UI); err != nil {
		return cfg, fmt.Errorf("ui: %w", err)
	}
	return cfg, nil
}

func fillSection(dst, src map[string]any, allowed map[string]string, section string) error {
	for key, value := range src {
		canonical, ok := allowed[normalizeKey(key)]
		if !ok {
			return fmt.Errorf("unknown %s key: %s", section, key)
		}
		dst[canonical] = value
	}
	return nil
}

func assignFilter(section map[string]any, dst *FilterConfig) error {
	for key, value := range section {
		switch key {
		case "enabled":
			b, err := expectBool(value, key)
			if err != nil {
				return err
			}
			dst.Enabled = &b
		case "show_context":
			b, err := expectBool(value, key)
			if err != nil {
				return err
			}
			dst.ShowContext = &b
		case "excluded_prompts":
			list, err := expectIntList(value, key)
			if err != nil {
				return err
			}
			dst.ExcludedPrompts = &list
		case "tags":
			tags, err := DecodeTags(value, key)
			if err != nil {
				return err
			}
			dst.Tags = &tags
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
	}
	return nil
}

func assignUI(section map[string]any, dst *UIConfig) error {
	for key, value := range section {
		switch key {
		case "output":
			str, err := expectString(value, key)
			if err != nil {
				return err
			}
			dst.Output = &str
		case "color":
			str, err := expectString(value, key)
			if err != nil {
				return err
			}
			dst.Color = &str
		case "highlight":
			b, err := expectBool(value, key)
			if err != nil {
				return err
			}
			dst.Highlight = &b
		case "truncate":
			n, err := expectInt(value, key)
			if err != nil {
				return err
			}
			dst.Truncate = &n
		case "jobs":
			n, err := expectInt(value, key)
			if err != nil {
				return err
			}
			dst.Jobs = &n
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
	}
	return nil
}

// DecodeTags decodes a generic tag list as produced by the YAML, TOML or JSON
// decoders. Keys are matched loosely (open, openTag, open_tag). A record
// without "enabled" is enabled. Content problems such as blank delimiters are
// not errors here; see Settings.Problems.
func DecodeTags(value any, field string) ([]model.Tag, error) {
	if value == nil {
		return []model.Tag{}, nil
	}
	items, ok := value.([]any)
	if !ok {
		if typed, isMaps := value.([]map[string]any); isMaps {
			items = make([]any, len(typed))
			for i := range typed {
				items[i] = typed[i]
			}
		} else {
			return nil, fmt.Errorf("expected list for %s, got %T", field, value)
		}
	}
	out := make([]model.Tag, 0, len(items))
	for i, item := range items {
		rec, err := toStringKeyMap(item)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", field, i, err)
		}
		tag := model.Tag{Enabled: true}
		for key, v := range rec {
			canonical, ok := tagKeyMap[normalizeKey(key)]
			if !ok {
				return nil, fmt.Errorf("%s[%d]: unknown key: %s", field, i, key)
			}
			if canonical == "enabled" {
				b, err := expectBool(v, canonical)
				if err != nil {
					return nil, fmt.Errorf("%s[%d]: %w", field, i, err)
				}
				tag.Enabled = b
				continue
			}
			str, err := expectString(v, canonical)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", field, i, err)
			}
			switch canonical {
			case "id":
				tag.ID = strings.TrimSpace(str)
			case "name":
				tag.Name = str
			case "open_tag":
				tag.OpenTag = str
			case "close_tag":
				tag.CloseTag = str
			}
		}
		out = append(out, tag)
	}
	return out, nil
}

func expectString(value any, field string) (string, error) {
	if value == nil {
		return "", fmt.Errorf("%s cannot be null", field)
	}
	if s, ok := value.(string); ok {
		return s, nil
	}
	return "", fmt.Errorf("expected string for %s, got %T", field, value)
}

func expectBool(value any, field string) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return opts.ParseBool(v, field)
	default:
		return false, fmt.Errorf("expected bool for %s, got %T", field, value)
	}
}

func expectInt(value any, field string) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("expected integer for %s, got %v", field, value)
		}
		return int(v), nil
	case json.Number:
		n, err := strconv.Atoi(v.String())
		if err != nil {
			return 0, fmt.Errorf("invalid integer value for %s: %v", field, value)
		}
		return n, nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, fmt.Errorf("invalid integer value for %s: %q", field, v)
		}
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			return 0, fmt.Errorf("invalid integer value for %s: %q", field, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected integer for %s, got %T", field, value)
	}
}

func expectIntList(value any, field string) ([]int, error) {
	switch v := value.(type) {
	case nil:
		return []int{}, nil
	case string:
		return opts.ParseIndexList([]string{v}, field)
	case []any:
		out := make([]int, 0, len(v))
		for _, item := range v {
			n, err := expectInt(item, field)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	case []int:
		return cloneInts(v), nil
	default:
		return nil, fmt.Errorf("expected integer list for %s, got %T", field, value)
	}
}

func toStringKeyMap(v any) (map[string]any, error) {
	switch typed := v.(type) {
	case map[string]any:
		return typed, nil
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, value := range typed {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string key: %v", k)
			}
			out[key] = value
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected map, got %T", v)
	}
}

func normalizeKey(key string) string {
	norm := strings.ToLower(strings.TrimSpace(key))
	norm = strings.ReplaceAll(norm, "-", "_")
	return norm
}
