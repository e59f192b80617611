// Package templates handles HTML template rendering for pages and Datastar
// SSE fragments.
package templates

import (
	"bytes"
	"html/template"
	"io"
	"io/fs"
	"sync"
	"time"
)

// Patterns parsed from a template filesystem, relative to its root.
var patterns = []string{"templates/*.html", "templates/fragments/*.html"}

// funcMap provides template functions shared by pages and fragments.
var funcMap = template.FuncMap{
	"rfc3339": func(t time.Time) string {
		return t.UTC().Format(time.RFC3339)
	},
}

// Renderer manages page and fragment templates.
type Renderer struct {
	templates *template.Template
	fsys      fs.FS
	mu        sync.RWMutex
}

// New parses templates/*.html and templates/fragments/*.html from fsys.
// Templates are addressed by file name, e.g. "viewer.html".
func New(fsys fs.FS) (*Renderer, error) {
	tmpl, err := parse(fsys)
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: tmpl, fsys: fsys}, nil
}

func parse(fsys fs.FS) (*template.Template, error) {
	return template.New("").Funcs(funcMap).ParseFS(fsys, patterns...)
}

// RenderToBuffer renders a named template to a buffer.
func (r *Renderer) RenderToBuffer(buf *bytes.Buffer, name string, data any) error {
	return r.Execute(buf, name, data)
}

// Execute renders a named template to w.
func (r *Renderer) Execute(w io.Writer, name string, data any) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.templates.ExecuteTemplate(w, name, data)
}

// Reload re-parses templates from the filesystem (useful for dev hot-reload
// when serving from a directory).
func (r *Renderer) Reload() error {
	tmpl, err := parse(r.fsys)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.templates = tmpl
	r.mu.Unlock()

	return nil
}
