package termcolor

import (
	"fmt"
	"strings"
)

type Style struct {
	Bold      bool
	Underline bool
	Dim       bool
	Reverse   bool
	FGBasic   *int
	FG256     *int
	FGTrue    *[3]uint8
	BGBasic   *int
	BGTrue    *[3]uint8
}

// Apply wraps text in SGR codes for s. Disabled or empty styles return text
// unchanged.
func Apply(s Style, text string, enabled bool) string {
	if !enabled || text == "" {
		return text
	}
	codes := sgrCodes(s)
	if len(codes) == 0 {
		return text
	}
	return "\x1b[" + strings.Join(codes, ";") + "m" + text + "\x1b[0m"
}

// Codes returns the opening and closing sequences for s, for callers that
// wrap many fragments of one string.
func Codes(s Style, enabled bool) (string, string) {
	if !enabled {
		return "", ""
	}
	codes := sgrCodes(s)
	if len(codes) == 0 {
		return "", ""
	}
	return "\x1b[" + strings.Join(codes, ";") + "m", "\x1b[0m"
}

func sgrCodes(s Style) []string {
	codes := make([]string, 0, 7)
	if s.Bold {
		codes = append(codes, "1")
	}
	if s.Dim {
		codes = append(codes, "2")
	}
	if s.Underline {
		codes = append(codes, "4")
	}
	if s.Reverse {
		codes = append(codes, "7")
	}
	switch {
	case s.FGTrue != nil:
		rgb := *s.FGTrue
		codes = append(codes, fmt.Sprintf("38;2;%d;%d;%d", rgb[0], rgb[1], rgb[2]))
	case s.FG256 != nil:
		codes = append(codes, fmt.Sprintf("38;5;%d", *s.FG256))
	case s.FGBasic != nil:
		codes = append(codes, fmt.Sprintf("3%d", *s.FGBasic))
	}
	switch {
	case s.BGTrue != nil:
		rgb := *s.BGTrue
		codes = append(codes, fmt.Sprintf("48;2;%d;%d;%d", rgb[0], rgb[1], rgb[2]))
	case s.BGBasic != nil:
		codes = append(codes, fmt.Sprintf("4%d", *s.BGBasic))
	}
	return codes
}
