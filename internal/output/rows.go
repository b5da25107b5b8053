package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/phyten/tagfilter/internal/model"
)

// Row is one match flattened for tabular output.
type Row struct {
	TagIndex  int    `json:"-"`
	TagID     string `json:"tag_id"`
	Tag       string `json:"tag"`
	Index     int    `json:"index"`
	Offset    int    `json:"offset"`
	StartLine int    `json:"start_line"`
	StartCol  int    `json:"start_col"`
	EndLine   int    `json:"end_line"`
	EndCol    int    `json:"end_col"`
	Content   string `json:"content"`
	FullMatch string `json:"full_match"`
}

// Rows flattens a in tag order, then match order.
func Rows(a model.Analysis) []Row {
	rows := make([]Row, 0, a.Total())
	for ti, tm := range a.TagMatches {
		for mi, m := range tm.Matches {
			rows = append(rows, Row{
				TagIndex:  ti,
				TagID:     tm.Tag.ID,
				Tag:       tm.Tag.Name,
				Index:     mi,
				Offset:    m.Offset,
				StartLine: m.Span.StartLine,
				StartCol:  m.Span.StartCol,
				EndLine:   m.Span.EndLine,
				EndCol:    m.Span.EndCol,
				Content:   m.Content,
				FullMatch: m.FullMatch,
			})
		}
	}
	return rows
}

type Field struct {
	Key    string
	Header string
}

type FieldSelection struct {
	Fields []Field
}

var fieldRegistry = map[string]string{
	"tag":      "TAG",
	"tag_id":   "TAG_ID",
	"id":       "TAG_ID",
	"index":    "INDEX",
	"offset":   "OFFSET",
	"line":     "LINE",
	"col":      "COL",
	"location": "LOCATION",
	"length":   "LENGTH",
	"content":  "CONTENT",
	"match":    "MATCH",
}

var defaultFields = []string{"tag", "location", "offset", "content"}

// ResolveFields parses a comma separated field list. Empty means the default
// set.
func ResolveFields(raw string) (FieldSelection, error) {
	raw = strings.TrimSpace(raw)
	keys := defaultFields
	if raw != "" {
		keys = strings.Split(raw, ",")
	}
	sel := FieldSelection{Fields: make([]Field, 0, len(keys))}
	for _, part := range keys {
		name := strings.TrimSpace(part)
		if name == "" {
			return FieldSelection{}, fmt.Errorf("invalid fields: empty entry")
		}
		key := strings.ToLower(name)
		header, ok := fieldRegistry[key]
		if !ok {
			return FieldSelection{}, fmt.Errorf("unknown field: %s", name)
		}
		if key == "id" {
			key = "tag_id"
		}
		sel.Fields = append(sel.Fields, Field{Key: key, Header: header})
	}
	return sel, nil
}

func Headers(fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Header
	}
	return out
}

func RowValues(r Row, fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = fieldValue(r, f.Key)
	}
	return out
}

func fieldValue(r Row, key string) string {
	switch key {
	case "tag":
		return r.Tag
	case "tag_id":
		return r.TagID
	case "index":
		return strconv.Itoa(r.Index)
	case "offset":
		return strconv.Itoa(r.Offset)
	case "line":
		return strconv.Itoa(r.StartLine)
	case "col":
		return strconv.Itoa(r.StartCol)
	case "location":
		return fmt.Sprintf("%d:%d-%d:%d", r.StartLine, r.StartCol, r.EndLine, r.EndCol)
	case "length":
		return strconv.Itoa(len([]rune(r.FullMatch)))
	case "content":
		return r.Content
	case "match":
		return r.FullMatch
	default:
		return ""
	}
}
