package output

import (
	"encoding/json"
	"io"

	"github.com/phyten/tagfilter/internal/model"
)

// WriteNDJSON streams one JSON object per row.
func WriteNDJSON(w io.Writer, rows []Row) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes the whole analysis as one indented document.
func WriteJSON(w io.Writer, a model.Analysis) error {
	if a.TagMatches == nil {
		a.TagMatches = []model.TagMatches{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(a)
}
