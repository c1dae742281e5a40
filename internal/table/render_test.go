package table

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/a-h/templ"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	if err := c.Render(context.Background(), &b); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return b.String()
}

func threeColumns() []Column[person] {
	return []Column[person]{
		NewColumn(Column[person]{ID: "id"}),
		NewColumn(Column[person]{ID: "name"}),
		NewColumn(Column[person]{ID: "email"}),
	}
}

func TestTable_EmptyData(t *testing.T) {
	out := render(t, Table("t", []person{}, threeColumns(), nil))

	if n := strings.Count(out, "<tr"); n != 2 {
		t.Errorf("row count = %d, want 2 (header + empty row)", n)
	}
	if !strings.Contains(out, `colspan="3"`) {
		t.Errorf("missing colspan=3: %s", out)
	}
	if strings.Count(out, "No records found.") != 1 {
		t.Errorf("want exactly one empty message: %s", out)
	}
}

func TestTable_HiddenColumnsExcluded(t *testing.T) {
	cols := threeColumns()
	cols = append(cols, NewColumn(Column[person]{ID: "created_by_name", Hide: true}))

	empty := render(t, Table("t", nil, cols, nil))
	if !strings.Contains(empty, `colspan="3"`) {
		t.Errorf("hidden column counted in colspan: %s", empty)
	}

	out := render(t, Table("t", people()[:1], cols, nil))
	if n := strings.Count(out, "<th "); n != 3 {
		t.Errorf("header cells = %d, want 3", n)
	}
	if n := strings.Count(out, "<td "); n != 3 {
		t.Errorf("body cells = %d, want 3", n)
	}
	if strings.Contains(out, "Created By Name") {
		t.Error("hidden caption rendered")
	}
}

func TestTable_NoColumns(t *testing.T) {
	out := render(t, Table[person]("t", people(), nil, nil))
	if out != "<p>No columns defined</p>" {
		t.Errorf("got %q", out)
	}
}

func TestHeader(t *testing.T) {
	cols := []Column[person]{NewColumn(Column[person]{ID: "created_by_name", Size: 180, Align: AlignRight})}
	out := render(t, Header(cols))

	if !strings.Contains(out, ">Created By Name</th>") {
		t.Errorf("caption missing: %s", out)
	}
	if !strings.Contains(out, "width: 180px; text-align: right") {
		t.Errorf("size/align missing: %s", out)
	}
}

func TestRow_Values(t *testing.T) {
	cols := []Column[person]{
		NewColumn(Column[person]{ID: "name"}),
		NewColumn(Column[person]{ID: "role"}),
		NewColumn(Column[person]{ID: "actions"}),
	}
	out := render(t, Row(person{Name: "<b>Ada</b>"}, 0, cols, nil))

	if !strings.Contains(out, "&lt;b&gt;Ada&lt;/b&gt;") {
		t.Errorf("value not escaped: %s", out)
	}
	if n := strings.Count(out, ">"+Placeholder+"</td>"); n != 2 {
		t.Errorf("placeholder count = %d, want 2 (nil role, absent actions): %s", n, out)
	}
}

func TestRow_CustomRender(t *testing.T) {
	cols := []Column[person]{
		NewColumn(Column[person]{
			ID: "actions",
			Render: func(value any, row person, index int) templ.Component {
				return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
					_, err := fmt.Fprintf(w, "<button>%d:%v:%d</button>", row.ID, value, index)
					return err
				})
			},
		}),
	}
	out := render(t, Row(person{ID: 9}, 4, cols, nil))

	if !strings.Contains(out, "<button>9:<nil>:4</button>") {
		t.Errorf("render output wrong: %s", out)
	}
}

func TestRow_Clickable(t *testing.T) {
	href := func(p person) string { return fmt.Sprintf("/users/%d", p.ID) }

	out := render(t, Row(person{ID: 5}, 0, threeColumns(), href))
	if !strings.Contains(out, `data-href="/users/5"`) || !strings.Contains(out, "cursor: pointer") {
		t.Errorf("clickable row attrs missing: %s", out)
	}

	inert := render(t, Row(person{ID: 5}, 0, threeColumns(), nil))
	if strings.Contains(inert, "data-href") || !strings.Contains(inert, "cursor: default") {
		t.Errorf("row without handler should be inert: %s", inert)
	}
}

func TestRowAttrs_MergesEveryColumn(t *testing.T) {
	cols := []Column[person]{
		NewColumn(Column[person]{ID: "name", RowProps: func(person) Attrs {
			return Attrs{"class": "row", "style": "color: red"}
		}}),
		NewColumn(Column[person]{ID: "role", Hide: true, RowProps: When(func(p person) bool { return p.Role == nil }, Attrs{"class": "pending", "style": "color: gray"})}),
	}

	attrs := RowAttrs(person{}, cols, nil)
	if attrs["class"] != "row pending" {
		t.Errorf("class = %q", attrs["class"])
	}
	if attrs["style"] != "color: gray; cursor: default" {
		t.Errorf("style = %q", attrs["style"])
	}
}

func TestCell_OnClickEventsAndOnRendered(t *testing.T) {
	cols := []Column[person]{
		NewColumn(Column[person]{
			ID:     "email",
			Events: map[string]string{"hx-get": "/preview"},
			OnClick: func(value any, row person, index int) string {
				return "mailto:" + FieldString(value)
			},
			OnRendered: func(c *Cell, row person) {
				c.Attrs["data-index"] = fmt.Sprint(c.Index)
			},
		}),
	}
	out := render(t, Row(person{Email: "a@b.c"}, 3, cols, nil))

	for _, want := range []string{`data-href="mailto:a@b.c"`, `hx-get="/preview"`, `data-index="3"`, "cursor: pointer"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in %s", want, out)
		}
	}
}

func TestBody_PreservesOrder(t *testing.T) {
	out := render(t, Body(people(), []Column[person]{NewColumn(Column[person]{ID: "id"})}, nil))

	var last int
	for _, id := range []string{">2<", ">1<", ">3<", ">4<"} {
		i := strings.Index(out, id)
		if i < last {
			t.Fatalf("rows out of order: %s", out)
		}
		last = i
	}
}
