package table

import (
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Align is the horizontal alignment of a column.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Column describes how one field of a row type T is captioned, sized and
// rendered.
type Column[T any] struct {
	// ID names the field read from each row (json tag, map key or Fielder id).
	ID      string
	Caption string
	Size    int
	Align   Align
	Type    string
	Hide    bool

	// Render overrides the default cell content. value is nil when the
	// row has no field named ID.
	Render func(value any, row T, index int) templ.Component

	// OnRendered runs after a cell is built and may adjust it.
	OnRendered func(cell *Cell, row T)

	// Events are extra attributes copied onto every cell, typically hx-*
	// attributes wiring the cell to an endpoint.
	Events map[string]string

	// OnClick returns the navigation target for a cell. An empty result
	// leaves the cell inert.
	OnClick func(value any, row T, index int) string

	// RowProps contributes attributes to the row element.
	RowProps func(row T) Attrs
}

// Cell is the cell being rendered, as passed to OnRendered.
type Cell struct {
	Column string
	Index  int
	Value  any
	Attrs  Attrs
}

// NewColumn returns c with defaults filled in: caption derived from the id,
// size 100, left alignment and type "text".
func NewColumn[T any](c Column[T]) Column[T] {
	if c.Caption == "" {
		c.Caption = Caption(c.ID)
	}
	if c.Size == 0 {
		c.Size = 100
	}
	if c.Align == "" {
		c.Align = AlignLeft
	}
	if c.Type == "" {
		c.Type = "text"
	}
	return c
}

// Caption derives a header caption from a snake_case id:
// "created_by_name" becomes "Created By Name".
func Caption(id string) string {
	words := strings.ReplaceAll(strings.ToLower(id), "_", " ")
	// Casers keep state, so each call gets its own.
	return cases.Title(language.English).String(words)
}

// Visible returns the columns that are not hidden, in order.
func Visible[T any](cols []Column[T]) []Column[T] {
	out := make([]Column[T], 0, len(cols))
	for _, c := range cols {
		if !c.Hide {
			out = append(out, c)
		}
	}
	return out
}

// ColumnOption is a selectable column in the rule editors.
type ColumnOption struct {
	ID      string
	Caption string
}

// Options lists the visible columns as editor choices.
func Options[T any](cols []Column[T]) []ColumnOption {
	vis := Visible(cols)
	out := make([]ColumnOption, len(vis))
	for i, c := range vis {
		out[i] = ColumnOption{ID: c.ID, Caption: c.Caption}
	}
	return out
}
