package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"

	"github.com/tripnest/tripnest/internal/identity"
	"github.com/tripnest/tripnest/internal/web/flash"
	"github.com/tripnest/tripnest/internal/web/session"
	"github.com/tripnest/tripnest/pkg/httpx"
	"github.com/tripnest/tripnest/pkg/slogx"
)

//go:embed templates
var templatesFS embed.FS

// Page is the data every template receives.
type Page struct {
	Title   string
	Session session.State
	Flash   *flash.Notice

	// Form echoes submitted values; Errors holds field messages.
	Form   map[string]string
	Errors map[string]string
	// Error is a form-level or page-level message.
	Error string
	// Retry is the manual retry link for transient failures.
	Retry string

	Data any
}

// CanVisit reports whether the signed-in user may open path.
func (p Page) CanVisit(path string) bool {
	return p.Session.IsAuthenticated() && identity.CanAccess(p.Session.Role(), path)
}

// Renderer holds one template set per page, each layered on the base layout.
type Renderer struct {
	pages map[string]*template.Template
}

// LoadTemplates parses the embedded pages.
func LoadTemplates() (*Renderer, error) {
	base, err := fs.ReadFile(templatesFS, "templates/layouts/base.html")
	if err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(templatesFS, "templates/pages")
	if err != nil {
		return nil, err
	}

	rd := &Renderer{pages: make(map[string]*template.Template, len(entries))}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		content, err := fs.ReadFile(templatesFS, path.Join("templates/pages", e.Name()))
		if err != nil {
			return nil, err
		}

		t, err := template.New("base").Parse(string(base))
		if err != nil {
			return nil, fmt.Errorf("parse layout: %w", err)
		}
		if _, err := t.Parse(string(content)); err != nil {
			return nil, fmt.Errorf("parse %s: %w", e.Name(), err)
		}
		rd.pages[e.Name()] = t
	}
	return rd, nil
}

// Render writes page name with status. The session and any pending flash
// notice are filled in from r.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name string, p Page) {
	t, ok := rd.pages[name]
	if !ok {
		slogx.FromContext(r.Context()).Error("unknown template", "template", name)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	p.Session = session.StateFromRequest(r)
	if p.Flash == nil {
		if n, ok := flash.ReadAndClear(w, r); ok {
			p.Flash = &n
		}
	}
	if p.Form == nil {
		p.Form = map[string]string{}
	}
	if p.Errors == nil {
		p.Errors = map[string]string{}
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", p); err != nil {
		slogx.FromContext(r.Context()).Error("render failed", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// Pages reflect who is signed in.
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Handler renders a fixed page.
func (rd *Renderer) Handler(name, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rd.Render(w, r, http.StatusOK, name, Page{Title: title})
	}
}
