// Package prompt applies the filter to an assembled prompt just before it is
// sent: the prompt is split into paragraphs, excluded paragraphs pass through
// untouched and every other paragraph is stripped.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/phyten/tagfilter/internal/config"
	"github.com/phyten/tagfilter/internal/engine"
	"github.com/phyten/tagfilter/internal/textutil"
)

// Separator divides a prompt into paragraphs.
const Separator = "\n\n"

// PreviewLength is the number of characters shown per paragraph preview.
const PreviewLength = 100

var ErrIndexOutOfRange = errors.New("paragraph index out of range")

// Result carries both versions of the prompt for the context viewer.
type Result struct {
	Original    string `json:"original"`
	Processed   string `json:"processed"`
	Changed     bool   `json:"changed"`
	ShowContext bool   `json:"show_context"`
}

// Segment is one paragraph as listed by the prompt scanner.
type Segment struct {
	Index    int    `json:"index"`
	Text     string `json:"text"`
	Preview  string `json:"preview"`
	Excluded bool   `json:"excluded"`
}

// Processor runs prompts through an Engine so skipped tags get logged.
type Processor struct {
	Engine engine.Engine
}

func Process(text string, s config.Settings) Result {
	return Processor{}.Process(text, s)
}

func (p Processor) Process(text string, s config.Settings) Result {
	res := Result{Original: text, Processed: text, ShowContext: s.ShowContext}
	if !s.Enabled || len(s.Tags) == 0 || text == "" {
		return res
	}
	matchers := p.Engine.Matchers(s.Tags)
	parts := Split(text)
	for i, part := range parts {
		if s.IsExcluded(i) {
			continue
		}
		for _, m := range matchers {
			part = m.ReplaceAll(part)
		}
		parts[i] = part
	}
	res.Processed = Join(parts)
	res.Changed = res.Processed != text
	return res
}

func Split(text string) []string {
	return strings.Split(text, Separator)
}

func Join(parts []string) string {
	return strings.Join(parts, Separator)
}

// Segments lists the non-blank paragraphs of text. Indices refer to the
// position in Split(text), so blank paragraphs leave gaps.
func Segments(text string, s config.Settings) []Segment {
	parts := Split(text)
	out := make([]Segment, 0, len(parts))
	for i, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		out = append(out, Segment{
			Index:    i,
			Text:     part,
			Preview:  textutil.Preview(part, PreviewLength),
			Excluded: s.IsExcluded(i),
		})
	}
	return out
}

// Swap exchanges paragraphs i and j (move up / move down).
func Swap(text string, i, j int) (string, error) {
	parts := Split(text)
	if err := checkIndex(i, len(parts)); err != nil {
		return text, err
	}
	if err := checkIndex(j, len(parts)); err != nil {
		return text, err
	}
	parts[i], parts[j] = parts[j], parts[i]
	return Join(parts), nil
}

// Replace swaps paragraph i for newText.
func Replace(text string, i int, newText string) (string, error) {
	parts := Split(text)
	if err := checkIndex(i, len(parts)); err != nil {
		return text, err
	}
	parts[i] = newText
	return Join(parts), nil
}

func checkIndex(i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, i, n)
	}
	return nil
}
