package engine

import (
	"strings"

	"github.com/phyten/tagfilter/internal/model"
)

const (
	msgNameRequired  = "tag name required"
	msgOpenRequired  = "open tag required"
	msgCloseRequired = "close tag required"
)

// Validate reports whether a (possibly partially filled) tag can be saved.
// Checks short-circuit in order: name, open tag, close tag, compilation.
// It has no side effects and is cheap enough to run on every keystroke.
func Validate(tag model.Tag) model.Validation {
	switch {
	case strings.TrimSpace(tag.Name) == "":
		return model.Validation{Message: msgNameRequired}
	case strings.TrimSpace(tag.OpenTag) == "":
		return model.Validation{Message: msgOpenRequired}
	case strings.TrimSpace(tag.CloseTag) == "":
		return model.Validation{Message: msgCloseRequired}
	}
	if _, err := Compile(tag); err != nil {
		return model.Validation{Message: err.Error()}
	}
	return model.Validation{IsValid: true}
}
