package engine

import (
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/phyten/tagfilter/internal/model"
)

// ErrMissingDelimiter is returned by Compile when a tag lacks an open or close delimiter.
var ErrMissingDelimiter = errors.New("open and close tags are required")

// Matcher finds open...content...close spans for a single tag.
type Matcher struct {
	tag model.Tag
	re  *regexp.Regexp
}

// Compile builds the matcher for tag. The pattern is
// literal(open) + non-greedy capture of any character (newlines included) +
// literal(close), so every span ends at the nearest following close delimiter.
//
// Go's regexp package guarantees linear-time matching, so adversarial
// delimiters or inputs cannot trigger catastrophic backtracking.
func Compile(tag model.Tag) (*Matcher, error) {
	if tag.OpenTag == "" || tag.CloseTag == "" {
		return nil, ErrMissingDelimiter
	}
	re, err := regexp.Compile(pattern(tag.OpenTag, tag.CloseTag))
	if err != nil {
		return nil, fmt.Errorf("compile %s...%s: %w", tag.OpenTag, tag.CloseTag, err)
	}
	return &Matcher{tag: tag, re: re}, nil
}

func pattern(openTag, closeTag string) string {
	return "(?s)" + EscapeLiteral(openTag) + "(.*?)" + EscapeLiteral(closeTag)
}

// Tag returns the definition the matcher was compiled from.
func (m *Matcher) Tag() model.Tag { return m.tag }

// Pattern returns the compiled regular expression source.
func (m *Matcher) Pattern() string { return m.re.String() }

// ReplaceAll removes every match from text.
func (m *Matcher) ReplaceAll(text string) string {
	return m.re.ReplaceAllLiteralString(text, "")
}

// MatchString reports whether text contains at least one span.
func (m *Matcher) MatchString(text string) bool {
	return m.re.MatchString(text)
}

// FindAll returns every non-overlapping match in text, left to right.
func (m *Matcher) FindAll(text string) []model.Match {
	locs := m.re.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	out := make([]model.Match, 0, len(locs))
	cur := newCursor(text)
	for _, loc := range locs {
		cur.advance(loc[0])
		startRune, startLine, startCol := cur.rune, cur.line, cur.col
		cur.advance(loc[1])
		out = append(out, model.Match{
			FullMatch: text[loc[0]:loc[1]],
			Content:   text[loc[2]:loc[3]],
			Offset:    startRune,
			Span: model.Span{
				StartLine: startLine,
				StartCol:  startCol,
				EndLine:   cur.line,
				EndCol:    cur.col,
				ByteStart: loc[0],
				ByteEnd:   loc[1],
			},
		})
	}
	return out
}

// cursor walks text forward once, tracking rune offset and 1-based line/column.
// EndCol positions are exclusive.
type cursor struct {
	text string
	pos  int
	rune int
	line int
	col  int
}

func newCursor(text string) *cursor {
	return &cursor{text: text, line: 1, col: 1}
}

func (c *cursor) advance(to int) {
	for c.pos < to {
		r, size := utf8.DecodeRuneInString(c.text[c.pos:])
		if r == '\n' {
			c.line++
			c.col = 1
		} else {
			c.col++
		}
		c.pos += size
		c.rune++
	}
}
