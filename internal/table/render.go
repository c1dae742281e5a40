package table

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// Placeholder is shown for cells whose value is absent or nil.
const Placeholder = "-"

// EmptyMessage fills the body of a table without rows.
const EmptyMessage = "No records found."

// Table renders a complete table. rowHref, when non-nil, makes each row
// navigate to the returned target; a row with an empty target stays inert.
func Table[T any](id string, rows []T, cols []Column[T], rowHref func(T) string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(cols) == 0 {
			_, err := io.WriteString(w, "<p>No columns defined</p>")
			return err
		}

		if _, err := fmt.Fprintf(w, `<div class="table-wrapper"><table id="%s" class="stat-table">`, templ.EscapeString(id)); err != nil {
			return err
		}
		if err := Header(cols).Render(ctx, w); err != nil {
			return err
		}
		if err := Body(rows, cols, rowHref).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</table></div>")
		return err
	})
}

// Header renders one th per visible column.
func Header[T any](cols []Column[T]) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<thead><tr>"); err != nil {
			return err
		}
		for _, c := range Visible(cols) {
			style := fmt.Sprintf("width: %dpx; text-align: %s", c.Size, c.Align)
			if _, err := fmt.Fprintf(w, `<th data-column="%s" style="%s">%s</th>`,
				templ.EscapeString(c.ID), templ.EscapeString(style), templ.EscapeString(c.Caption)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</tr></thead>")
		return err
	})
}

// Body renders the rows in order, or a single full-width row holding
// EmptyMessage when there are none.
func Body[T any](rows []T, cols []Column[T], rowHref func(T) string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<tbody>"); err != nil {
			return err
		}

		if len(rows) == 0 {
			span := strconv.Itoa(len(Visible(cols)))
			if _, err := io.WriteString(w, `<tr class="empty-row"><td colspan="`+span+`" style="text-align: center">`+EmptyMessage+`</td></tr>`); err != nil {
				return err
			}
		}
		for i, row := range rows {
			if err := Row(row, i, cols, rowHref).Render(ctx, w); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, "</tbody>")
		return err
	})
}

// Row renders one record through the visible columns.
func Row[T any](row T, index int, cols []Column[T], rowHref func(T) string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<tr"); err != nil {
			return err
		}
		if err := writeAttrs(w, RowAttrs(row, cols, rowHref)); err != nil {
			return err
		}
		if _, err := io.WriteString(w, ">"); err != nil {
			return err
		}

		for _, c := range Visible(cols) {
			if err := renderCell(ctx, w, row, index, c); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, "</tr>")
		return err
	})
}

// RowAttrs merges the RowProps of every column in order and adds the
// navigation attributes when the row has a click target.
func RowAttrs[T any](row T, cols []Column[T], rowHref func(T) string) Attrs {
	patches := make([]Attrs, 0, len(cols)+1)
	for _, c := range cols {
		if c.RowProps != nil {
			patches = append(patches, c.RowProps(row))
		}
	}

	href := ""
	if rowHref != nil {
		href = rowHref(row)
	}
	if href != "" {
		patches = append(patches, Attrs{"data-href": href, "class": "clickable", "style": "cursor: pointer"})
	} else {
		patches = append(patches, Attrs{"style": "cursor: default"})
	}
	return MergeAttrs(patches...)
}

func renderCell[T any](ctx context.Context, w io.Writer, row T, index int, c Column[T]) error {
	value, ok := FieldValue(row, c.ID)
	if !ok {
		value = nil
	}

	cell := &Cell{
		Column: c.ID,
		Index:  index,
		Value:  value,
		Attrs:  Attrs{"style": "text-align: " + string(c.Align)},
	}
	for k, v := range c.Events {
		cell.Attrs[k] = v
	}
	if c.OnClick != nil {
		if href := c.OnClick(value, row, index); href != "" {
			cell.Attrs = MergeAttrs(cell.Attrs, Attrs{"data-href": href, "class": "clickable", "style": "cursor: pointer"})
		}
	}
	if c.OnRendered != nil {
		c.OnRendered(cell, row)
	}

	if _, err := io.WriteString(w, "<td"); err != nil {
		return err
	}
	if err := writeAttrs(w, cell.Attrs); err != nil {
		return err
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}

	switch {
	case c.Render != nil:
		if comp := c.Render(value, row, index); comp != nil {
			if err := comp.Render(ctx, w); err != nil {
				return err
			}
		}
	case isNil(value):
		if _, err := io.WriteString(w, Placeholder); err != nil {
			return err
		}
	default:
		if _, err := io.WriteString(w, templ.EscapeString(FieldString(value))); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, "</td>")
	return err
}
