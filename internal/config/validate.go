package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/phyten/tagfilter/internal/engine"
	"github.com/phyten/tagfilter/internal/engine/opts"
)

const maxJobs = 64

func CanonicalizeColor(raw string) (string, error) {
	mode := strings.ToLower(strings.TrimSpace(raw))
	if mode == "" {
		return "auto", nil
	}
	switch mode {
	case "auto", "always", "never":
		return mode, nil
	default:
		return "", fmt.Errorf("invalid color: %s (want auto|always|never)", raw)
	}
}

func ValidateJobs(jobs int) error {
	if jobs < 1 || jobs > maxJobs {
		return fmt.Errorf("jobs must be between 1 and %d", maxJobs)
	}
	return nil
}

func NormalizeUI(values UISettings) (UISettings, error) {
	var err error
	values.Output, err = opts.NormalizeOutput(values.Output)
	if err != nil {
		return values, err
	}
	values.Color, err = CanonicalizeColor(values.Color)
	if err != nil {
		return values, err
	}
	if values.Truncate < 0 {
		return values, fmt.Errorf("truncate must be >= 0")
	}
	if err := ValidateJobs(values.Jobs); err != nil {
		return values, err
	}
	return values, nil
}

// NormalizeSettings sorts and de-duplicates the excluded indices and rejects
// duplicate tag ids. Tags whose delimiters do not validate are kept; see
// Problems.
func NormalizeSettings(values Settings) (Settings, error) {
	seen := make(map[int]struct{}, len(values.ExcludedPrompts))
	excluded := make([]int, 0, len(values.ExcludedPrompts))
	for _, idx := range values.ExcludedPrompts {
		if idx < 0 {
			return values, fmt.Errorf("excluded_prompts: index must be >= 0, got %d", idx)
		}
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		excluded = append(excluded, idx)
	}
	sort.Ints(excluded)
	values.ExcludedPrompts = excluded

	ids := make(map[string]int, len(values.Tags))
	for i, tag := range values.Tags {
		if tag.ID == "" {
			continue
		}
		if prev, dup := ids[tag.ID]; dup {
			return values, fmt.Errorf("tags[%d]: duplicate id %q (also tags[%d])", i, tag.ID, prev)
		}
		ids[tag.ID] = i
	}
	return values, nil
}

// Problem describes a stored tag that the engine will skip.
type Problem struct {
	Index   int
	TagID   string
	Name    string
	Message string
}

func (p Problem) String() string {
	label := p.Name
	if label == "" {
		label = p.TagID
	}
	return fmt.Sprintf("tags[%d] %q: %s", p.Index, label, p.Message)
}

func (s Settings) Problems() []Problem {
	var out []Problem
	for i, tag := range s.Tags {
		res := engine.Validate(tag)
		if res.IsValid {
			continue
		}
		out = append(out, Problem{Index: i, TagID: tag.ID, Name: tag.Name, Message: res.Message})
	}
	return out
}
