// Package templates renders the dashboard pages. Pages are html/template
// files embedded in the binary and exposed as templ components, so handlers
// treat them the same as the table components they embed.
package templates

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/admindash/internal/web/paths"
)

//go:embed html/*.html
var files embed.FS

var funcs = template.FuncMap{
	"add":     func(a, b int) int { return a + b },
	"initial": Initial,
	"record":  paths.Record,
	"user":    paths.User,
	"subject": paths.Subject,
	"task":    paths.Task,
	"trunc":   Truncate,
}

var (
	base  *template.Template
	pages = map[string]*template.Template{}
)

func init() {
	base = template.Must(template.New("base").Funcs(funcs).ParseFS(files, "html/layout.html", "html/partials.html"))

	for _, name := range []string{"login", "dashboard", "users", "user", "subjects", "subject", "tasks", "task", "task_new", "settings"} {
		t := template.Must(base.Clone())
		pages[name] = template.Must(t.ParseFS(files, "html/"+name+".html"))
	}
}

// page renders the layout of a page set with data.
func page(name string, data any) templ.Component {
	return lookup(pages[name], name, "layout", data)
}

// fragment renders one named template of a page set without the layout.
func fragment(name, tmpl string, data any) templ.Component {
	return lookup(pages[name], name, tmpl, data)
}

// partial renders a template shared by every page.
func partial(tmpl string, data any) templ.Component {
	return lookup(base, "base", tmpl, data)
}

func lookup(set *template.Template, setName, tmpl string, data any) templ.Component {
	var t *template.Template
	if set != nil {
		t = set.Lookup(tmpl)
	}
	if t == nil {
		return templ.ComponentFunc(func(context.Context, io.Writer) error {
			return fmt.Errorf("template %s/%s not found", setName, tmpl)
		})
	}
	return templ.FromGoHTML(t, data)
}

// Initial is the avatar fallback: the first letter of name, upper-cased.
func Initial(name string) string {
	name = strings.TrimSpace(name)
	r, _ := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}

// Truncate shortens s to n runes, marking the cut with an ellipsis.
func Truncate(n int, s string) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n])) + "…"
}
