package engine

import (
	"fmt"
	"strings"

	"github.com/phyten/tagfilter/internal/model"
)

// Mode selects between the two filter operations.
type Mode string

const (
	ModeStrip   Mode = "strip"
	ModeAnalyze Mode = "analyze"
)

// ParseMode accepts strip|remove and analyze|preview (case-insensitive).
func ParseMode(raw string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "strip", "remove":
		return ModeStrip, nil
	case "analyze", "analyse", "preview":
		return ModeAnalyze, nil
	default:
		return "", fmt.Errorf("invalid mode: %s", raw)
	}
}

// Result carries the output of Apply. Text is set for ModeStrip and
// Analysis for ModeAnalyze.
type Result struct {
	Mode     Mode            `json:"mode"`
	Text     string          `json:"text,omitempty"`
	Analysis *model.Analysis `json:"analysis,omitempty"`
}

// Apply dispatches to Strip or Analyze.
func Apply(text string, tags []model.Tag, mode Mode) (Result, error) {
	return Engine{}.Apply(text, tags, mode)
}

// Apply dispatches to Strip or Analyze.
func (e Engine) Apply(text string, tags []model.Tag, mode Mode) (Result, error) {
	switch mode {
	case ModeStrip:
		return Result{Mode: mode, Text: e.Strip(text, tags)}, nil
	case ModeAnalyze:
		a := e.Analyze(text, tags)
		return Result{Mode: mode, Analysis: &a}, nil
	default:
		return Result{}, fmt.Errorf("invalid mode: %s", mode)
	}
}
