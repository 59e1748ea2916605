package handler

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joestump/joe-events/internal/auth"
	"github.com/joestump/joe-events/internal/build"
	"github.com/joestump/joe-events/internal/query"
	"github.com/joestump/joe-events/internal/store"
	"github.com/joestump/joe-events/web"
)

// BasePage carries layout-level data available to every template.
type BasePage struct {
	Title   string
	User    *store.User // nil for anonymous visitors
	Crumbs  []query.Crumb
	Flash   *Flash
	Version string
}

func newBasePage(r *http.Request, title string) BasePage {
	return BasePage{
		Title:   title,
		User:    auth.UserFromContext(r.Context()),
		Version: build.Version,
	}
}

// newDashboardPage is newBasePage plus breadcrumbs for the request path.
func newDashboardPage(r *http.Request, title string) BasePage {
	b := newBasePage(r, title)
	b.Crumbs = query.Breadcrumbs(r.URL.Path)
	return b
}

// Flash represents a one-time notification message shown to the user.
type Flash struct {
	Type    string // "success", "error", "warning", "info"
	Message string
}

var printer = message.NewPrinter(language.English)

// formatMoney renders cents as dollars with grouping, e.g. "$1,500.00".
// Zero renders as "Free".
func formatMoney(cents int) string {
	if cents == 0 {
		return "Free"
	}
	return printer.Sprintf("$%.2f", float64(cents)/100)
}

var funcs = template.FuncMap{
	"label": query.Label,
	"money": formatMoney,
	"date": func(t time.Time) string {
		return t.UTC().Format("Mon, Jan 2 2006 · 15:04 MST")
	},
	"isoDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format("2006-01-02T15:04")
	},
	"join":         strings.Join,
	"categoryHref": categoryHref,
}

// categoryHref links to /events narrowed to a single category.
func categoryHref(name string) string {
	return query.Href("/events", query.AddFilterValues(nil, query.KeyCategories, name))
}

// pageCache maps a render key (e.g. "events.html", "dashboard/orders.html")
// to a template set containing base.html, the partials and that page. Each
// page gets its own set so {{define "content"}} blocks don't collide.
var (
	pageCache    map[string]*template.Template
	fragmentTmpl *template.Template
)

func init() {
	partials, err := fs.Glob(web.TemplateFS, "templates/partials/*.html")
	if err != nil {
		panic("glob partials: " + err.Error())
	}
	fragmentTmpl = template.Must(template.New("").Funcs(funcs).ParseFS(web.TemplateFS, partials...))

	pageCache = make(map[string]*template.Template)
	err = fs.WalkDir(web.TemplateFS, "templates/pages", func(p string, d fs.DirEntry, e error) error {
		if e != nil || d.IsDir() || !strings.HasSuffix(p, ".html") {
			return e
		}
		files := append([]string{"templates/base.html"}, partials...)
		files = append(files, p)

		t, err := template.New("").Funcs(funcs).ParseFS(web.TemplateFS, files...)
		if err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}
		rel, _ := strings.CutPrefix(p, "templates/pages/")
		pageCache[rel] = t
		return nil
	})
	if err != nil {
		panic("build page cache: " + err.Error())
	}
}

// isHTMX returns true when the request was sent by HTMX.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// render executes a full-page template (base layout + named page).
func render(w http.ResponseWriter, tmpl string, data any) {
	renderStatus(w, http.StatusOK, tmpl, data)
}

func renderStatus(w http.ResponseWriter, status int, tmpl string, data any) {
	t, ok := pageCache[tmpl]
	if !ok {
		http.Error(w, "template not found: "+tmpl, http.StatusInternalServerError)
		return
	}
	var buf strings.Builder
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(buf.String()))
}

// renderFragment executes a named template from the global partials set.
// Used for HTMX swaps of event_list, events_table and order_table.
func renderFragment(w http.ResponseWriter, tmpl string, data any) {
	var buf strings.Builder
	if err := fragmentTmpl.ExecuteTemplate(&buf, tmpl, data); err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(buf.String()))
}

// notFound renders the 404 page.
func notFound(w http.ResponseWriter, r *http.Request) {
	renderStatus(w, http.StatusNotFound, "not_found.html", newBasePage(r, "Not found"))
}
