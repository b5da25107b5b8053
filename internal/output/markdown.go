package output

import (
	"fmt"
	"io"
	"strings"
)

// WriteMarkdownTable renders rows as a GitHub Flavored Markdown table.
func WriteMarkdownTable(w io.Writer, rows []Row, sel FieldSelection) error {
	headers := Headers(sel.Fields)
	if _, err := fmt.Fprintf(w, "| %s |\n", strings.Join(headers, " | ")); err != nil {
		return err
	}
	sep := make([]string, len(headers))
	for i := range sep {
		sep[i] = "---"
	}
	if _, err := fmt.Fprintf(w, "| %s |\n", strings.Join(sep, " | ")); err != nil {
		return err
	}
	for _, r := range rows {
		vals := RowValues(r, sel.Fields)
		for i := range vals {
			vals[i] = escapeMarkdownCell(vals[i])
		}
		if _, err := fmt.Fprintf(w, "| %s |\n", strings.Join(vals, " | ")); err != nil {
			return err
		}
	}
	return nil
}

func escapeMarkdownCell(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "<br>")
	s = strings.ReplaceAll(s, "|", "\\|")
	return s
}
