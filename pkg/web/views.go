// Package web serves server-rendered pages: parsed template sets, public
// files, and a page router with a not-found fallback.
package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
)

// ViewDef names a view template and its page title.
type ViewDef struct {
	Template string
	Title    string
}

// ViewData is passed to every template. BasePath is the module prefix so
// templates can build links with {{ .BasePath }}.
type ViewData struct {
	Title    string
	BasePath string
	Data     any
}

// TemplateSet holds one parsed template tree per view, each a clone of the
// shared layouts.
type TemplateSet struct {
	views    map[string]*template.Template
	basePath string
}

// NewTemplateSet parses the layouts matching layoutGlob, then parses each
// view from viewSubdir into its own clone. funcs may be nil.
func NewTemplateSet(layoutFS, viewFS fs.FS, layoutGlob, viewSubdir, basePath string, funcs template.FuncMap, views []ViewDef) (*TemplateSet, error) {
	layouts, err := template.New("").Funcs(funcs).ParseFS(layoutFS, layoutGlob)
	if err != nil {
		return nil, fmt.Errorf("parse layouts: %w", err)
	}

	viewSub, err := fs.Sub(viewFS, viewSubdir)
	if err != nil {
		return nil, err
	}

	ts := &TemplateSet{
		views:    make(map[string]*template.Template, len(views)),
		basePath: basePath,
	}
	for _, v := range views {
		t, err := layouts.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layouts for %s: %w", v.Template, err)
		}
		if _, err := t.ParseFS(viewSub, v.Template); err != nil {
			return nil, fmt.Errorf("parse template: %s: %w", v.Template, err)
		}
		ts.views[v.Template] = t
	}
	return ts, nil
}

// Data builds the ViewData for view with the set's base path.
func (ts *TemplateSet) Data(view ViewDef, data any) ViewData {
	return ViewData{Title: view.Title, BasePath: ts.basePath, Data: data}
}

// ErrorHandler renders view with the given status for every request.
func (ts *TemplateSet) ErrorHandler(layout string, view ViewDef, status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ts.Render(w, status, layout, view.Template, ts.Data(view, nil)); err != nil {
			http.Error(w, http.StatusText(status), status)
		}
	}
}

// Render executes layout for the view into a buffer and writes it with
// status. Nothing is written when execution fails.
func (ts *TemplateSet) Render(w http.ResponseWriter, status int, layout, viewPath string, data ViewData) error {
	t, ok := ts.views[viewPath]
	if !ok {
		return fmt.Errorf("template not found: %s", viewPath)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, layout, data); err != nil {
		return fmt.Errorf("execute %s: %w", viewPath, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
