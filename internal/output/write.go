package output

import (
	"fmt"
	"io"

	"github.com/phyten/tagfilter/internal/model"
)

// Write renders a in the named format (see opts.NormalizeOutput).
func Write(w io.Writer, format string, a model.Analysis, sel FieldSelection, opt TableOptions) error {
	switch format {
	case "", "table":
		return WriteTable(w, Rows(a), sel, opt)
	case "tsv":
		return WriteTSV(w, Rows(a), sel)
	case "csv":
		return WriteCSV(w, Rows(a), sel)
	case "markdown":
		return WriteMarkdownTable(w, Rows(a), sel)
	case "ndjson":
		return WriteNDJSON(w, Rows(a))
	case "json":
		return WriteJSON(w, a)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}
