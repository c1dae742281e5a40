package table

import "testing"

func TestCaption(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"created_by_name", "Created By Name"},
		{"name", "Name"},
		{"EMAIL", "Email"},
		{"due_date", "Due Date"},
		{"max_score", "Max Score"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Caption(tt.id); got != tt.want {
			t.Errorf("Caption(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestNewColumn_Defaults(t *testing.T) {
	c := NewColumn(Column[person]{ID: "created_by_name"})

	if c.Caption != "Created By Name" {
		t.Errorf("Caption = %q", c.Caption)
	}
	if c.Size != 100 {
		t.Errorf("Size = %d, want 100", c.Size)
	}
	if c.Align != AlignLeft {
		t.Errorf("Align = %q, want left", c.Align)
	}
	if c.Type != "text" {
		t.Errorf("Type = %q, want text", c.Type)
	}
	if c.Hide {
		t.Error("Hide = true, want false")
	}
}

func TestNewColumn_KeepsExplicitValues(t *testing.T) {
	c := NewColumn(Column[person]{ID: "id", Caption: "#", Size: 40, Align: AlignRight, Type: "number", Hide: true})

	if c.Caption != "#" || c.Size != 40 || c.Align != AlignRight || c.Type != "number" || !c.Hide {
		t.Errorf("explicit values overwritten: %+v", c)
	}
}

func TestOptions_SkipsHidden(t *testing.T) {
	cols := []Column[person]{
		NewColumn(Column[person]{ID: "id", Hide: true}),
		NewColumn(Column[person]{ID: "name"}),
		NewColumn(Column[person]{ID: "email"}),
	}

	opts := Options(cols)
	if len(opts) != 2 {
		t.Fatalf("len(Options) = %d, want 2", len(opts))
	}
	if opts[0].ID != "name" || opts[0].Caption != "Name" {
		t.Errorf("opts[0] = %+v", opts[0])
	}
}
