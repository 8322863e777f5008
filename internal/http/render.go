package http

import (
	"bytes"
	"html/template"
	"net/http"
	"time"

	"household/internal/core"
	applog "household/internal/log"
	appweb "household/web"
)

var templateFuncs = template.FuncMap{
	"euros":   formatEuros,
	"date":    formatDate,
	"due":     formatDue,
	"overdue": func(t core.Task) bool { return t.Overdue(time.Now()) },
}

func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
}

// page is what every template receives.
type page struct {
	Title  string
	Active string
	Flash  *Flash
	Data   any
}

// render executes a page template into a buffer first so a failing template
// produces a plain 500 instead of half a page. The flash cookie is only
// consumed once the page has rendered.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, p page) {
	if s.templates == nil {
		requestLogger(r).WithComponent(applog.ComponentTemplate).ErrorContext(r.Context(), "Templates not loaded",
			applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	_, cookieErr := r.Cookie(flashCookie)
	hasFlash := cookieErr == nil
	p.Flash = s.flash.Peek(r)

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, p); err != nil {
		requestLogger(r).ErrorContext(r.Context(), "Template execution failed",
			applog.FieldError, err,
			"template", name,
			applog.FieldOperation, applog.OpRender)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if hasFlash {
		s.flash.Clear(w)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
