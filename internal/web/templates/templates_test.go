package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/admindash/internal/core"
	"github.com/JonMunkholm/admindash/internal/table"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return buf.String()
}

func TestPages(t *testing.T) {
	layout := Layout{Title: "Users", Active: "users", UserName: "admin", UserEmail: "admin@example.com",
		Flash: &Toast{ID: "t1", Variant: ToastSuccess, Title: "Saved"}}

	tests := []struct {
		name string
		c    templ.Component
		want []string
	}{
		{
			name: "login",
			c:    Login(LoginPage{Layout: Layout{Title: "Sign in"}, Email: "a@b.co", Error: "Invalid email or password.", Fields: Fields{"password": "password is required"}}),
			want: []string{"<title>", `value="a@b.co"`, "Invalid email or password.", "password is required"},
		},
		{
			name: "users",
			c: Users(UsersPage{Layout: layout, Search: "ada", Role: core.RoleAdmin, Roles: core.Roles, Statuses: core.Statuses,
				Panel: TablePanel{View: "users", Path: "/users", Query: "users-query", Page: 2, LastPage: 3, PageSizes: table.PageSizes, PageSize: 5}}),
			want: []string{`id="users-query"`, `value="ada"`, `hx-include="#users-query"`, `hx-get="/users?page=1"`, `hx-get="/users?page=3"`, "Saved"},
		},
		{
			name: "user",
			c:    User(UserPage{Layout: layout, User: core.User{ID: "7", Name: "Ada"}, Form: core.AccessForm{Role: core.RoleAdmin}, Roles: core.Roles, Statuses: core.Statuses}),
			want: []string{`action="/users/Nw"`, `action="/users/Nw/delete"`, `<option value="admin" selected>`},
		},
		{
			name: "task",
			c:    Task(TaskPage{Layout: layout, Task: core.Task{ID: "11", SubjectID: "3", SubjectName: "Algebra", Title: "Essay"}}),
			want: []string{`href="/subjects/Mw"`, "← Algebra", `action="/tasks/MTE/delete"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := render(t, tt.c)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q", want)
				}
			}
		})
	}
}

func TestPanel_WithoutQueryOmitsInclude(t *testing.T) {
	got := render(t, Panel(TablePanel{
		View:      "subjects",
		Path:      "/subjects",
		Table:     "<table></table>",
		Columns:   []table.ColumnOption{{ID: "name", Caption: "Name"}},
		Operators: table.Operators,
		Filters:   []table.FilterRule{{Field: "name", Operator: table.OpContains, Value: "alg"}},
		Sorts:     []table.SortRule{{Field: "name", Order: table.Desc}, {Field: "id", Order: table.Asc}},
		Page:      1,
		LastPage:  1,
		PageSizes: table.PageSizes,
	}))

	if strings.Contains(got, "hx-include") {
		t.Error("a panel without a query form must not set hx-include")
	}
	for _, want := range []string{`<section id="table-panel"`, "<table></table>", `value="alg"`, "Sort by", "then by", "Filters (1)"} {
		if !strings.Contains(got, want) {
			t.Errorf("panel missing %q", want)
		}
	}
}

func TestFragments(t *testing.T) {
	got := render(t, UserAccess(UserPage{User: core.User{ID: "7"}, Fields: Fields{"role": "role must be one of [trainee admin]"}}))
	if !strings.HasPrefix(got, `<form id="user-access"`) || strings.Contains(got, "<html") {
		t.Errorf("fragment should render the form alone, got %.80q", got)
	}

	alert := render(t, ErrorAlert("Something went wrong", "Try again.", "E500"))
	for _, want := range []string{"Something went wrong", "Try again.", "E500"} {
		if !strings.Contains(alert, want) {
			t.Errorf("alert missing %q", want)
		}
	}
}

func TestMissingTemplate(t *testing.T) {
	var buf bytes.Buffer
	if err := fragment("users", "nope", nil).Render(context.Background(), &buf); err == nil {
		t.Error("Render() of an unknown template should fail")
	}
}

func TestHelpers(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{Initial("ada"), "A"},
		{Initial("  élodie"), "É"},
		{Initial(""), "?"},
		{Truncate(5, "short"), "short"},
		{Truncate(4, "abcdef"), "abcd…"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}
