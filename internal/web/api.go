package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phyten/tagfilter/internal/config"
	"github.com/phyten/tagfilter/internal/engine"
	"github.com/phyten/tagfilter/internal/engine/opts"
	"github.com/phyten/tagfilter/internal/model"
	"github.com/phyten/tagfilter/internal/output"
	"github.com/phyten/tagfilter/internal/prompt"
	"github.com/phyten/tagfilter/internal/termcolor"
)

const maxBodyBytes = 1 << 20

// Source supplies the settings snapshot each request is served from.
type Source interface {
	Get() config.Snapshot
}

// Server is the test-mode HTTP surface: the embedded UI plus a JSON API over
// the current settings.
type Server struct {
	src     Source
	eng     engine.Engine
	version string
}

func New(src Source, eng engine.Engine, version string) *Server {
	return &Server{src: src, eng: eng, version: version}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	Register(mux, s.version)
	mux.HandleFunc("POST /api/strip", s.handleStrip)
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /api/validate", s.handleValidate)
	mux.HandleFunc("GET /api/tags", s.handleTags)
	return mux
}

// textRequest is the body of /api/strip and /api/analyze. Tags, when present,
// replace the configured tags for this request only and accept the same keys
// as the settings file.
type textRequest struct {
	Text   string `json:"text"`
	Tags   any    `json:"tags,omitempty"`
	Prompt bool   `json:"prompt,omitempty"`
}

type analyzeResponse struct {
	model.Analysis
	Total int          `json:"total"`
	Rows  []output.Row `json:"rows"`
}

type validateResponse struct {
	model.Validation
	Description engine.Description `json:"description"`
}

type tagsResponse struct {
	Path            string      `json:"path"`
	Where           string      `json:"where"`
	Enabled         bool        `json:"enabled"`
	ShowContext     bool        `json:"show_context"`
	ExcludedPrompts []int       `json:"excluded_prompts"`
	Tags            []model.Tag `json:"tags"`
	Problems        []string    `json:"problems"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleStrip(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	settings, err := s.settingsFor(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var res prompt.Result
	if req.Prompt {
		res = prompt.Processor{Engine: s.eng}.Process(req.Text, settings)
	} else {
		out := s.eng.Strip(req.Text, settings.Tags)
		res = prompt.Result{Original: req.Text, Processed: out, Changed: out != req.Text, ShowContext: settings.ShowContext}
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	settings, err := s.settingsFor(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	a := s.eng.Analyze(req.Text, settings.Tags)
	q := r.URL.Query()
	if !q.Has("output") && !q.Has("highlight") {
		writeJSON(w, http.StatusOK, analyzeResponse{Analysis: a, Total: a.Total(), Rows: output.Rows(a)})
		return
	}

	// ?output=tsv&fields=tag,content or ?highlight=1 render the same text the
	// CLI prints, without colour.
	def := opts.Defaults()
	def.Mode = engine.ModeAnalyze
	o, err := opts.ApplyWebQueryToOptions(def, q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := opts.NormalizeAndValidate(&o); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if o.Mode != engine.ModeAnalyze {
		writeError(w, http.StatusBadRequest, fmt.Errorf("mode %s is not supported here", o.Mode))
		return
	}
	sel, err := output.ResolveFields(strings.Join(opts.SplitMulti(q["fields"]), ","))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var buf bytes.Buffer
	contentType := "text/plain; charset=utf-8"
	if o.Highlight {
		err = output.WriteHighlighted(&buf, req.Text, a, termcolor.Painter{})
	} else {
		err = output.Write(&buf, o.Output, a, sel, output.TableOptions{Truncate: o.Truncate})
		contentType = renderedContentType(o.Output)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func renderedContentType(format string) string {
	switch format {
	case "json":
		return "application/json"
	case "ndjson":
		return "application/x-ndjson"
	case "csv":
		return "text/csv; charset=utf-8"
	case "tsv":
		return "text/tab-separated-values; charset=utf-8"
	case "markdown":
		return "text/markdown; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var tag model.Tag
	tag.Enabled = true
	if err := decodeBody(w, r, &tag); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, validateResponse{
		Validation:  engine.Validate(tag),
		Description: engine.Describe(tag),
	})
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	snap := s.src.Get()
	settings := snap.Settings
	res := tagsResponse{
		Path:            snap.Path,
		Where:           snap.Where,
		Enabled:         settings.Enabled,
		ShowContext:     settings.ShowContext,
		ExcludedPrompts: settings.ExcludedPrompts,
		Tags:            settings.Tags,
		Problems:        []string{},
	}
	if res.ExcludedPrompts == nil {
		res.ExcludedPrompts = []int{}
	}
	if res.Tags == nil {
		res.Tags = []model.Tag{}
	}
	for _, p := range settings.Problems() {
		res.Problems = append(res.Problems, p.String())
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) settingsFor(req textRequest) (config.Settings, error) {
	settings := s.src.Get().Settings
	if req.Tags == nil {
		return settings, nil
	}
	tags, err := config.DecodeTags(req.Tags, "tags")
	if err != nil {
		return settings, err
	}
	settings.Tags = tags
	return settings, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	ct := r.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		return fmt.Errorf("unsupported content type: %s", ct)
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: err.Error()})
}

// writeJSON leaves HTML characters unescaped; the UI escapes on render.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
