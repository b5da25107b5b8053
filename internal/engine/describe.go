package engine

import (
	"fmt"

	"github.com/phyten/tagfilter/internal/model"
)

// Severity classifies a Description for display.
type Severity string

const (
	SeverityHint    Severity = "hint"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Description is a one-line summary of a tag and its compiled pattern.
type Description struct {
	Text     string   `json:"text"`
	Severity Severity `json:"severity"`
}

func Describe(tag model.Tag) Description {
	m, err := Compile(tag)
	if err != nil {
		return Description{Text: "cannot build pattern: " + err.Error(), Severity: SeverityError}
	}
	text := fmt.Sprintf("tag: %s. pattern: %s", tag.Name, m.Pattern())
	if !tag.Enabled {
		return Description{Text: text + " (disabled)", Severity: SeverityWarning}
	}
	return Description{Text: text, Severity: SeverityHint}
}
