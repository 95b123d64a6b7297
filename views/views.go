// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/danielhkuo/sabc/auth"
	"github.com/danielhkuo/sabc/paginate"
)

//go:embed templates static
var files embed.FS

// URLFunc reverses a named route into a path
type URLFunc func(name string, pairs ...string) (string, error)

// Renderer executes the page templates. Each page is parsed together with
// the layout and partials so pages can define "title" and "content"
// without clashing.
type Renderer struct {
	pages    map[string]*template.Template
	url      URLFunc
	clubName string
	loc      *time.Location
}

// Page is the data every template receives
type Page struct {
	Title    string
	ClubName string
	Viewer   auth.Viewer
	Nav      []NavLink
	Year     int
	Data     any
}

// Pager pairs a page with the list URL for the pagination partial
type Pager struct {
	Page paginate.Page
	Base string
}

type errorView struct {
	Status  int
	Message string
}

func New(url URLFunc, clubName string, loc *time.Location) (*Renderer, error) {
	if loc == nil {
		loc = time.UTC
	}
	r := &Renderer{
		pages:    make(map[string]*template.Template),
		url:      url,
		clubName: clubName,
		loc:      loc,
	}

	pageFiles, err := fs.Glob(files, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	funcs := r.funcs()
	for _, file := range pageFiles {
		name := strings.TrimSuffix(path.Base(file), ".html")
		t, err := template.New(name).Funcs(funcs).ParseFS(files,
			"templates/layout.html",
			"templates/partials/*.html",
			file,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}

	return r, nil
}

// URL reverses a named route
func (r *Renderer) URL(name string, pairs ...string) (string, error) {
	return r.url(name, pairs...)
}

// Render writes the named page wrapped in the layout. The page is
// executed into a buffer first so a template error never leaves a
// half-written response.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, status int, name, title string, data any) error {
	t, ok := r.pages[name]
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return fmt.Errorf("unknown template %q", name)
	}

	viewer := auth.ViewerFrom(req.Context())
	page := Page{
		Title:    title,
		ClubName: r.clubName,
		Viewer:   viewer,
		Nav:      Nav(viewer),
		Year:     time.Now().In(r.loc).Year(),
		Data:     data,
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", page); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// RenderError writes the error page with the given status
func (r *Renderer) RenderError(w http.ResponseWriter, req *http.Request, status int, message string) {
	err := r.Render(w, req, status, "error", http.StatusText(status), errorView{
		Status:  status,
		Message: message,
	})
	if err != nil {
		slog.Error("failed to render error page", "status", status, "error", err)
	}
}

// StaticHandler serves the embedded stylesheet and images
func StaticHandler() http.Handler {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"url": func(name string, pairs ...string) string {
			u, err := r.url(name, pairs...)
			if err != nil {
				slog.Error("failed to reverse route", "route", name, "error", err)
				return "#"
			}
			return u
		},
		"ago":     humanize.Time,
		"ordinal": humanize.Ordinal,
		"title": func(s string) string {
			return cases.Title(language.English).String(s)
		},
		"weight": func(lbs float64) string {
			return strconv.FormatFloat(lbs, 'f', 2, 64)
		},
		// Calendar dates are stored as UTC midnight
		"date": func(t time.Time) string {
			return t.UTC().Format("Mon, Jan 2, 2006")
		},
		"localtime": func(t time.Time) string {
			return t.In(r.loc).Format("Jan 2, 2006 3:04 PM")
		},
		"pager": func(p paginate.Page, base string) Pager {
			return Pager{Page: p, Base: base}
		},
		// dict builds a map from key/value pairs for passing several
		// values into a sub-template
		"dict": func(pairs ...any) (map[string]any, error) {
			if len(pairs)%2 != 0 {
				return nil, fmt.Errorf("dict needs key/value pairs, got %d args", len(pairs))
			}
			m := make(map[string]any, len(pairs)/2)
			for i := 0; i < len(pairs); i += 2 {
				key, ok := pairs[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict key %v is not a string", pairs[i])
				}
				m[key] = pairs[i+1]
			}
			return m, nil
		},
		"percent": func(part, total int) int {
			if total == 0 {
				return 0
			}
			return part * 100 / total
		},
	}
}
