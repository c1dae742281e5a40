package core

import (
	"net/url"
	"testing"
	"time"
)

var fixedNow = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func testValidator() *Validator {
	return newValidator(func() time.Time { return fixedNow })
}

func validTaskForm() TaskForm {
	return TaskForm{
		SubjectID:   3,
		Title:       "Essay",
		Description: "Write 500 words",
		DueDate:     fixedNow.Add(24 * time.Hour),
		MaxScore:    50,
	}
}

func TestValidator_TaskForm(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(f *TaskForm)
		wantFields []string
	}{
		{"valid", func(f *TaskForm) {}, nil},
		{"missing subject", func(f *TaskForm) { f.SubjectID = 0 }, []string{"subject_id"}},
		{"missing title", func(f *TaskForm) { f.Title = "" }, []string{"title"}},
		{"missing description", func(f *TaskForm) { f.Description = "" }, []string{"description"}},
		{"missing due date", func(f *TaskForm) { f.DueDate = time.Time{} }, []string{"due_date"}},
		{"past due date", func(f *TaskForm) { f.DueDate = fixedNow.Add(-time.Minute) }, []string{"due_date"}},
		{"due date equal to now", func(f *TaskForm) { f.DueDate = fixedNow }, []string{"due_date"}},
		{"score zero", func(f *TaskForm) { f.MaxScore = 0 }, []string{"max_score"}},
		{"score above range", func(f *TaskForm) { f.MaxScore = 101 }, []string{"max_score"}},
		{"score bounds inclusive", func(f *TaskForm) { f.MaxScore = 100 }, nil},
		{"empty form", func(f *TaskForm) { *f = TaskForm{} }, []string{"subject_id", "title", "description", "due_date", "max_score"}},
	}

	v := testValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validTaskForm()
			tt.mutate(&form)

			err := v.Struct(form)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("Struct() error = %v", err)
				}
				return
			}

			verrs, ok := AsValidationErrors(err)
			if !ok {
				t.Fatalf("Struct() error = %v, want ValidationErrors", err)
			}
			fields := verrs.Fields()
			if len(fields) != len(tt.wantFields) {
				t.Errorf("failed fields = %v, want %v", fields, tt.wantFields)
			}
			for _, f := range tt.wantFields {
				if _, ok := fields[f]; !ok {
					t.Errorf("missing error for %s in %v", f, fields)
				}
			}
		})
	}
}

func TestValidator_Messages(t *testing.T) {
	v := testValidator()

	form := validTaskForm()
	form.Title = ""
	form.DueDate = fixedNow.Add(-time.Hour)

	verrs, ok := AsValidationErrors(v.Struct(form))
	if !ok {
		t.Fatal("expected ValidationErrors")
	}
	fields := verrs.Fields()

	if got := fields["title"]; got != "title is required" {
		t.Errorf("title message = %q, want %q", got, "title is required")
	}
	if got := fields["due_date"]; got != "due_date must be in the future" {
		t.Errorf("due_date message = %q, want %q", got, "due_date must be in the future")
	}
}

func TestValidator_OtherForms(t *testing.T) {
	v := testValidator()

	tests := []struct {
		name       string
		form       any
		wantFields []string
	}{
		{"login valid", LoginForm{Email: "admin@example.com", Password: "secret1"}, nil},
		{"login bad email and short password", LoginForm{Email: "admin", Password: "123"}, []string{"email", "password"}},
		{"subject valid", SubjectForm{Name: "Maths", Description: "Numbers"}, nil},
		{"subject missing description", SubjectForm{Name: "Maths"}, []string{"description"}},
		{"profile valid", ProfileForm{Name: "Ada", Email: "ada@example.com"}, nil},
		{"profile bad email", ProfileForm{Name: "Ada", Email: "ada"}, []string{"email"}},
		{"access valid", AccessForm{Role: RoleAdmin, Status: StatusPending}, nil},
		{"access unknown role", AccessForm{Role: "owner", Status: StatusApproved}, []string{"role"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.form)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("Struct() error = %v", err)
				}
				return
			}
			verrs, ok := AsValidationErrors(err)
			if !ok {
				t.Fatalf("Struct() error = %v, want ValidationErrors", err)
			}
			fields := verrs.Fields()
			for _, f := range tt.wantFields {
				if _, ok := fields[f]; !ok {
					t.Errorf("missing error for %s in %v", f, fields)
				}
			}
		})
	}
}

func TestDecodeTaskForm(t *testing.T) {
	form := url.Values{
		"subject_id":   {"4"},
		"title":        {"  Lab report "},
		"description":  {"Measure g"},
		"requirements": {""},
		"due_date":     {"2026-03-01T10:30"},
	}

	got := DecodeTaskForm(form, time.UTC)

	if got.SubjectID != 4 {
		t.Errorf("SubjectID = %d, want 4", got.SubjectID)
	}
	if got.Title != "Lab report" {
		t.Errorf("Title = %q, want trimmed", got.Title)
	}
	if got.MaxScore != DefaultMaxScore {
		t.Errorf("MaxScore = %d, want default %d", got.MaxScore, DefaultMaxScore)
	}
	want := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	if !got.DueDate.Equal(want) {
		t.Errorf("DueDate = %v, want %v", got.DueDate, want)
	}
	if got.DueDateInput() != "2026-03-01T10:30" {
		t.Errorf("DueDateInput() = %q", got.DueDateInput())
	}

	payload := got.Payload()
	if payload.DueDate != "2026-03-01T10:30:00.000Z" {
		t.Errorf("Payload().DueDate = %q, want ISO timestamp", payload.DueDate)
	}
}

func TestDecodeTaskForm_InvalidInputsDecodeToZero(t *testing.T) {
	form := url.Values{
		"subject_id": {"abc"},
		"due_date":   {"tomorrow"},
		"max_score":  {"lots"},
	}

	got := DecodeTaskForm(form, time.UTC)
	if got.SubjectID != 0 || !got.DueDate.IsZero() || got.MaxScore != 0 {
		t.Errorf("DecodeTaskForm() = %+v, want zero values", got)
	}
	if got.Payload().DueDate != "" {
		t.Error("zero due date should be sent empty")
	}
}

func TestTaskFormFrom(t *testing.T) {
	task := Task{
		SubjectID: "9",
		Title:     "Quiz",
		DueDate:   Timestamp{fixedNow},
	}

	got := TaskFormFrom(task)
	if got.SubjectID != 9 || got.Title != "Quiz" || got.MaxScore != DefaultMaxScore {
		t.Errorf("TaskFormFrom() = %+v", got)
	}
	if !got.DueDate.Equal(fixedNow) {
		t.Errorf("DueDate = %v, want %v", got.DueDate, fixedNow)
	}
}
