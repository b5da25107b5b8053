package output

import (
	"io"

	"github.com/phyten/tagfilter/internal/model"
	"github.com/phyten/tagfilter/internal/termcolor"
	"github.com/phyten/tagfilter/internal/textutil"
)

// Plain-text markers used when colour is off.
const (
	MarkOpen  = "⟦"
	MarkClose = "⟧"
)

// WriteHighlighted prints text with every match of a marked. Overlapping
// matches from different tags are merged into one marked region.
func WriteHighlighted(w io.Writer, text string, a model.Analysis, p termcolor.Painter) error {
	ranges := make([]textutil.Range, 0, a.Total())
	for _, tm := range a.TagMatches {
		for _, m := range tm.Matches {
			ranges = append(ranges, textutil.Range{Start: m.Span.ByteStart, End: m.Span.ByteEnd})
		}
	}
	open, closeSeq := p.MatchCodes()
	if open == "" {
		open, closeSeq = MarkOpen, MarkClose
	}
	out := textutil.Highlight(text, ranges, open, closeSeq)
	if len(out) == 0 || out[len(out)-1] != '\n' {
		out += "\n"
	}
	_, err := io.WriteString(w, out)
	return err
}
