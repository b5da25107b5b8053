package web

import (
	_ "embed"
	"html/template"
	"net/http"
	"sync"
)

const (
	stylesPath = "/assets/styles.css"
	scriptPath = "/assets/ui.js"
)

var (
	//go:embed templates/index.html
	indexHTML string
	indexOnce sync.Once
	indexTmpl *template.Template

	//go:embed assets/styles.css
	stylesCSS string

	//go:embed assets/ui.js
	scriptJS string
)

type indexData struct {
	Title      string
	Version    string
	StylesPath string
	ScriptPath string
}

// Register attaches handlers for the test-mode UI assets to the provided mux.
func Register(mux *http.ServeMux, version string) {
	mux.HandleFunc("GET /{$}", indexHandler(version))
	mux.HandleFunc("GET "+stylesPath, stylesHandler)
	mux.HandleFunc("GET "+scriptPath, scriptHandler)
}

func indexHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tmpl := loadTemplate()
		setSecurityHeaders(w)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		data := indexData{Title: "tagfilter", Version: version, StylesPath: stylesPath, ScriptPath: scriptPath}
		if err := tmpl.Execute(w, data); err != nil {
			http.Error(w, "template rendering failed", http.StatusInternalServerError)
		}
	}
}

func stylesHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	_, _ = w.Write([]byte(stylesCSS))
}

func scriptHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	_, _ = w.Write([]byte(scriptJS))
}

func setSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'self'; script-src 'self'; img-src 'self'; connect-src 'self'; form-action 'self'; base-uri 'none'")
}

func loadTemplate() *template.Template {
	indexOnce.Do(func() {
		indexTmpl = template.Must(template.New("index").Parse(indexHTML))
	})
	return indexTmpl
}
