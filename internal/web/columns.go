package web

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/admindash/internal/core"
	"github.com/JonMunkholm/admindash/internal/table"
	"github.com/JonMunkholm/admindash/internal/web/paths"
	"github.com/JonMunkholm/admindash/internal/web/templates"
)

// descriptionLength caps descriptions shown in table cells.
const descriptionLength = 80

func userColumns() []table.Column[core.User] {
	return []table.Column[core.User]{
		table.NewColumn(table.Column[core.User]{ID: "id", Caption: "ID", Size: 60}),
		table.NewColumn(table.Column[core.User]{
			ID: "avatar_url", Caption: "Avatar", Size: 60, Align: table.AlignCenter,
			Render: func(_ any, u core.User, _ int) templ.Component { return avatarCell(u.AvatarURL, u.Name) },
		}),
		table.NewColumn(table.Column[core.User]{ID: "name", Size: 160}),
		table.NewColumn(table.Column[core.User]{ID: "email", Size: 220}),
		table.NewColumn(table.Column[core.User]{
			ID: "role", Size: 100,
			Render: func(v any, _ core.User, _ int) templ.Component { return pillCell("pill pill-", table.FieldString(v)) },
		}),
		table.NewColumn(table.Column[core.User]{
			ID: "status", Size: 100,
			Render: func(v any, _ core.User, _ int) templ.Component { return pillCell("badge badge-", table.FieldString(v)) },
			RowProps: table.When(func(u core.User) bool { return u.Status == core.StatusPending },
				table.Attrs{"class": "row-pending", "title": "Waiting for approval"}),
		}),
		table.NewColumn(table.Column[core.User]{ID: "created_at", Caption: "Joined", Size: 120, Render: dateCell[core.User]}),
		table.NewColumn(table.Column[core.User]{ID: "updated_at", Hide: true}),
	}
}

func subjectColumns() []table.Column[core.Subject] {
	return []table.Column[core.Subject]{
		table.NewColumn(table.Column[core.Subject]{ID: "id", Caption: "ID", Size: 60}),
		table.NewColumn(table.Column[core.Subject]{ID: "name", Size: 180}),
		table.NewColumn(table.Column[core.Subject]{ID: "description", Size: 320, Render: truncatedCell[core.Subject]}),
		table.NewColumn(table.Column[core.Subject]{ID: "created_by_name", Caption: "Created By", Size: 140}),
		table.NewColumn(table.Column[core.Subject]{ID: "created_at", Caption: "Created", Size: 120, Render: dateCell[core.Subject]}),
	}
}

func taskColumns() []table.Column[core.Task] {
	return []table.Column[core.Task]{
		table.NewColumn(table.Column[core.Task]{ID: "id", Caption: "ID", Size: 60}),
		table.NewColumn(table.Column[core.Task]{ID: "title", Size: 200}),
		table.NewColumn(table.Column[core.Task]{ID: "description", Size: 320, Render: truncatedCell[core.Task]}),
		table.NewColumn(table.Column[core.Task]{
			ID: "subject_name", Caption: "Subject", Size: 160,
			OnClick: func(_ any, t core.Task, _ int) string {
				if t.SubjectID == "" {
					return ""
				}
				return paths.Subject(t.SubjectID)
			},
		}),
		table.NewColumn(table.Column[core.Task]{ID: "due_date", Caption: "Due", Size: 120, Render: dateCell[core.Task]}),
	}
}

// subjectTaskColumns drop the subject column, which would repeat the page.
func subjectTaskColumns() []table.Column[core.Task] {
	cols := taskColumns()
	for i := range cols {
		if cols[i].ID == "subject_name" {
			cols[i].Hide = true
		}
	}
	return cols
}

func userHref(u core.User) string       { return paths.User(u.ID) }
func subjectHref(s core.Subject) string { return paths.Subject(s.ID) }
func taskHref(t core.Task) string       { return paths.Task(t.ID) }

func avatarCell(src, name string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if src == "" {
			_, err := fmt.Fprintf(w, `<span class="avatar avatar-initial">%s</span>`, templ.EscapeString(templates.Initial(name)))
			return err
		}
		_, err := fmt.Fprintf(w, `<img class="avatar" src="%s" alt="%s" loading="lazy">`,
			templ.EscapeString(string(templ.URL(src))), templ.EscapeString(name))
		return err
	})
}

func pillCell(classPrefix, value string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if value == "" {
			_, err := io.WriteString(w, table.Placeholder)
			return err
		}
		_, err := fmt.Fprintf(w, `<span class="%s%s">%s</span>`,
			classPrefix, templ.EscapeString(value), templ.EscapeString(value))
		return err
	})
}

func dateCell[T any](v any, _ T, _ int) templ.Component {
	text := table.Placeholder
	if ts, ok := v.(core.Timestamp); ok && !ts.IsZero() {
		text = ts.Date()
	}
	return templ.Raw(templ.EscapeString(text))
}

func truncatedCell[T any](v any, _ T, _ int) templ.Component {
	text := strings.TrimSpace(table.FieldString(v))
	if text == "" {
		return templ.Raw(table.Placeholder)
	}
	return templ.Raw(templ.EscapeString(templates.Truncate(descriptionLength, text)))
}
