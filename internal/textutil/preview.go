package textutil

import (
	"sort"
	"strings"

	"github.com/rivo/uniseg"
)

// PreviewEllipsis is appended by Preview when text was cut.
const PreviewEllipsis = "..."

// Preview returns the first n user-perceived characters of s, followed by
// PreviewEllipsis when s is longer. Grapheme clusters are never split.
func Preview(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if uniseg.GraphemeClusterCount(s) <= n {
		return s
	}
	var b strings.Builder
	g := uniseg.NewGraphemes(s)
	for i := 0; i < n && g.Next(); i++ {
		b.WriteString(g.Str())
	}
	return b.String() + PreviewEllipsis
}

// OneLine folds line breaks and tabs into visible markers so a multi-line
// snippet fits one table cell.
func OneLine(s string) string {
	if !strings.ContainsAny(s, "\r\n\t") {
		return s
	}
	r := strings.NewReplacer("\r\n", "⏎", "\n", "⏎", "\r", "⏎", "\t", " ")
	return r.Replace(s)
}

// Range is a half-open byte range [Start, End) into a string.
type Range struct {
	Start int
	End   int
}

// Highlight wraps each range of s with the given prefix and suffix. Ranges
// may arrive unsorted or overlapping (matches of different tags over the
// same text); overlaps are merged so the markers always nest correctly.
func Highlight(s string, ranges []Range, prefix, suffix string) string {
	merged := mergeRanges(ranges, len(s))
	if len(merged) == 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + len(merged)*(len(prefix)+len(suffix)))
	last := 0
	for _, r := range merged {
		b.WriteString(s[last:r.Start])
		b.WriteString(prefix)
		b.WriteString(s[r.Start:r.End])
		b.WriteString(suffix)
		last = r.End
	}
	b.WriteString(s[last:])
	return b.String()
}

func mergeRanges(in []Range, limit int) []Range {
	rs := make([]Range, 0, len(in))
	for _, r := range in {
		if r.Start < 0 {
			r.Start = 0
		}
		if r.End > limit {
			r.End = limit
		}
		if r.End <= r.Start {
			continue
		}
		rs = append(rs, r)
	}
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].Start != rs[j].Start {
			return rs[i].Start < rs[j].Start
		}
		return rs[i].End < rs[j].End
	})
	out := rs[:0]
	for _, r := range rs {
		if n := len(out); n > 0 && r.Start <= out[n-1].End {
			if r.End > out[n-1].End {
				out[n-1].End = r.End
			}
			continue
		}
		out = append(out, r)
	}
	return out
}
