package output

import (
	"io"
	"strings"
)

var tsvEscaper = strings.NewReplacer(`\`, `\\`, "\t", `\t`, "\n", `\n`, "\r", `\r`)

// WriteTSV writes one line per row. Tabs, newlines and backslashes inside
// values are backslash-escaped so every row stays on one line.
func WriteTSV(w io.Writer, rows []Row, sel FieldSelection) error {
	if _, err := io.WriteString(w, strings.Join(Headers(sel.Fields), "\t")+"\n"); err != nil {
		return err
	}
	for _, r := range rows {
		vals := RowValues(r, sel.Fields)
		for i := range vals {
			vals[i] = tsvEscaper.Replace(vals[i])
		}
		if _, err := io.WriteString(w, strings.Join(vals, "\t")+"\n"); err != nil {
			return err
		}
	}
	return nil
}
