package output

import (
	"io"
	"strings"

	"github.com/phyten/tagfilter/internal/termcolor"
	"github.com/phyten/tagfilter/internal/textutil"
)

const columnGap = "  "

// TableOptions tune the human-readable table.
type TableOptions struct {
	// Truncate limits the display width of content and match cells; 0 keeps
	// them whole.
	Truncate int
	Painter  termcolor.Painter
}

// WriteTable renders an aligned table. Widths are measured in terminal
// columns so CJK text and emoji line up.
func WriteTable(w io.Writer, rows []Row, sel FieldSelection, opt TableOptions) error {
	headers := Headers(sel.Fields)
	cells := make([][]string, len(rows))
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = textutil.VisibleWidth(h)
	}
	for ri, r := range rows {
		vals := RowValues(r, sel.Fields)
		for ci, f := range sel.Fields {
			if f.Key == "content" || f.Key == "match" {
				vals[ci] = textutil.OneLine(vals[ci])
				if opt.Truncate > 0 {
					vals[ci] = textutil.TruncateByWidth(vals[ci], opt.Truncate, "…")
				}
			}
			if cw := textutil.VisibleWidth(vals[ci]); cw > widths[ci] {
				widths[ci] = cw
			}
		}
		cells[ri] = vals
	}

	p := opt.Painter
	if err := writeTableLine(w, headers, widths, func(_ int, s string) string { return p.Header(s) }); err != nil {
		return err
	}
	for ri, vals := range cells {
		row := rows[ri]
		paint := func(ci int, s string) string {
			if sel.Fields[ci].Key == "tag" {
				return p.Tag(row.TagIndex, s)
			}
			return s
		}
		if err := writeTableLine(w, vals, widths, paint); err != nil {
			return err
		}
	}
	return nil
}

func writeTableLine(w io.Writer, vals []string, widths []int, paint func(int, string) string) error {
	var b strings.Builder
	last := len(vals) - 1
	for i, v := range vals {
		if i == last {
			b.WriteString(paint(i, v))
			break
		}
		b.WriteString(paint(i, v))
		if pad := widths[i] - textutil.VisibleWidth(v); pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
		b.WriteString(columnGap)
	}
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}
