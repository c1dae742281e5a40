package table

import (
	"io"
	"sort"
	"strings"

	"github.com/a-h/templ"
)

// Attrs are HTML attributes of a row or cell.
type Attrs map[string]string

// MergeAttrs folds patches left to right. "class" values are unioned as
// whitespace separated lists, "style" declarations are combined with the
// later value winning per property, and any other attribute takes the last
// value set.
func MergeAttrs(patches ...Attrs) Attrs {
	out := Attrs{}
	var (
		classes []string
		seen    = map[string]bool{}
		styles  []styleDecl
	)

	for _, p := range patches {
		for k, v := range p {
			switch k {
			case "class":
				for _, c := range strings.Fields(v) {
					if !seen[c] {
						seen[c] = true
						classes = append(classes, c)
					}
				}
			case "style":
				styles = mergeStyle(styles, parseStyle(v))
			default:
				out[k] = v
			}
		}
	}

	if len(classes) > 0 {
		out["class"] = strings.Join(classes, " ")
	}
	if len(styles) > 0 {
		out["style"] = formatStyle(styles)
	}
	return out
}

// When returns a RowProps function applying attrs to rows matching pred.
func When[T any](pred func(T) bool, attrs Attrs) func(T) Attrs {
	return func(row T) Attrs {
		if pred(row) {
			return attrs
		}
		return nil
	}
}

type styleDecl struct {
	prop, value string
}

func parseStyle(s string) []styleDecl {
	var out []styleDecl
	for _, decl := range strings.Split(s, ";") {
		prop, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.TrimSpace(value)
		if prop == "" {
			continue
		}
		out = append(out, styleDecl{prop: prop, value: value})
	}
	return out
}

// mergeStyle keeps the first position of a property and the last value.
func mergeStyle(dst, src []styleDecl) []styleDecl {
next:
	for _, d := range src {
		for i := range dst {
			if dst[i].prop == d.prop {
				dst[i].value = d.value
				continue next
			}
		}
		dst = append(dst, d)
	}
	return dst
}

func formatStyle(decls []styleDecl) string {
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d.prop + ": " + d.value
	}
	return strings.Join(parts, "; ")
}

// writeAttrs writes attrs in key order, escaped, each preceded by a space.
func writeAttrs(w io.Writer, attrs Attrs) error {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, err := io.WriteString(w, " "+templ.EscapeString(k)+`="`+templ.EscapeString(attrs[k])+`"`); err != nil {
			return err
		}
	}
	return nil
}
