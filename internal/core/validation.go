package core

// validation.go checks form input before anything is sent to the API.
//
// Forms are plain structs tagged for go-playground/validator. Messages come
// from the validator's English translations, keyed by the json name of each
// field so handlers can place them next to the matching input. A form that
// fails validation is never submitted.

import (
	"errors"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// DueDateLayout is the value format of a datetime-local input.
const DueDateLayout = "2006-01-02T15:04"

// DefaultMaxScore prefills a new task form.
const DefaultMaxScore = 100

const (
	futureTag  = "future"
	futureText = "{0} must be in the future"

	requiredTag  = "required"
	requiredText = "{0} is required"
)

// FieldError is a single failed check.
type FieldError struct {
	Field   string // json name of the field
	Message string // human-readable message
}

// ValidationErrors lists every failed check of a form, in field order.
type ValidationErrors []FieldError

func (e ValidationErrors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns the messages keyed by field name. When a field failed
// more than one check the first message wins.
func (e ValidationErrors) Fields() map[string]string {
	m := make(map[string]string, len(e))
	for _, fe := range e {
		if _, ok := m[fe.Field]; !ok {
			m[fe.Field] = fe.Message
		}
	}
	return m
}

// AsValidationErrors extracts ValidationErrors from err.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Validator validates forms. It is safe for concurrent use.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
	now        func() time.Time
}

// NewValidator builds a validator with English messages.
func NewValidator() *Validator {
	return newValidator(time.Now)
}

func newValidator(now func() time.Time) *Validator {
	v := &Validator{validate: validator.New(), now: now}

	english := en.New()
	uni := ut.New(english, english)
	v.translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v.validate, v.translator)

	// Report json names so messages line up with form inputs.
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.validate.RegisterValidation(futureTag, v.future)
	v.registerTranslation(futureTag, futureText, false)
	v.registerTranslation(requiredTag, requiredText, true)

	return v
}

func (v *Validator) registerTranslation(tag, text string, override bool) {
	_ = v.validate.RegisterTranslation(
		tag, v.translator,
		func(t ut.Translator) error { return t.Add(tag, text, override) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// future passes for a time strictly after now.
func (v *Validator) future(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return t.After(v.now())
}

// Struct validates form and returns ValidationErrors, or nil when it passes.
func (v *Validator) Struct(form any) error {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: fe.Translate(v.translator)})
	}
	return out
}

// =============================================================================
// Forms
// =============================================================================

// LoginForm is the operator sign-in form.
type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// DecodeLoginForm reads a posted login form.
func DecodeLoginForm(form url.Values) LoginForm {
	return LoginForm{
		Email:    strings.TrimSpace(form.Get("email")),
		Password: form.Get("password"),
	}
}

// AccessForm changes a user's role and status.
type AccessForm struct {
	Role   Role   `json:"role" validate:"required,oneof=trainee admin"`
	Status Status `json:"status" validate:"required,oneof=approved pending"`
}

// DecodeAccessForm reads a posted access form.
func DecodeAccessForm(form url.Values) AccessForm {
	return AccessForm{
		Role:   Role(strings.TrimSpace(form.Get("role"))),
		Status: Status(strings.TrimSpace(form.Get("status"))),
	}
}

// ProfileForm updates the operator's profile.
type ProfileForm struct {
	Name  string `json:"name" validate:"required,max=120"`
	Email string `json:"email" validate:"required,email"`
}

// DecodeProfileForm reads a posted profile form.
func DecodeProfileForm(form url.Values) ProfileForm {
	return ProfileForm{
		Name:  strings.TrimSpace(form.Get("name")),
		Email: strings.TrimSpace(form.Get("email")),
	}
}

// SubjectForm creates or updates a subject.
type SubjectForm struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"required"`
}

// DecodeSubjectForm reads a posted subject form.
func DecodeSubjectForm(form url.Values) SubjectForm {
	return SubjectForm{
		Name:        strings.TrimSpace(form.Get("name")),
		Description: strings.TrimSpace(form.Get("description")),
	}
}

// SubjectFormFrom prefills an edit form.
func SubjectFormFrom(s Subject) SubjectForm {
	return SubjectForm{Name: s.Name, Description: s.Description}
}

// TaskForm creates or updates a task.
type TaskForm struct {
	SubjectID    int64     `json:"subject_id" validate:"required,gt=0"`
	Title        string    `json:"title" validate:"required,max=200"`
	Description  string    `json:"description" validate:"required"`
	Requirements string    `json:"requirements"`
	DueDate      time.Time `json:"due_date" validate:"required,future"`
	MaxScore     int       `json:"max_score" validate:"min=1,max=100"`
}

// NewTaskForm is an empty form for subject, which may be empty.
func NewTaskForm(subject ID) TaskForm {
	id, _ := strconv.ParseInt(string(subject), 10, 64)
	return TaskForm{SubjectID: id, MaxScore: DefaultMaxScore}
}

// TaskFormFrom prefills an edit form.
func TaskFormFrom(t Task) TaskForm {
	f := NewTaskForm(t.SubjectID)
	f.Title = t.Title
	f.Description = t.Description
	f.Requirements = t.Requirements
	f.DueDate = t.DueDate.Time
	if t.MaxScore > 0 {
		f.MaxScore = t.MaxScore
	}
	return f
}

// DecodeTaskForm reads a posted task form. The due date is a datetime-local
// value interpreted in loc. Unparseable numbers and dates decode to zero so
// validation reports them.
func DecodeTaskForm(form url.Values, loc *time.Location) TaskForm {
	if loc == nil {
		loc = time.Local
	}
	f := TaskForm{
		Title:        strings.TrimSpace(form.Get("title")),
		Description:  strings.TrimSpace(form.Get("description")),
		Requirements: strings.TrimSpace(form.Get("requirements")),
		MaxScore:     DefaultMaxScore,
	}
	f.SubjectID, _ = strconv.ParseInt(strings.TrimSpace(form.Get("subject_id")), 10, 64)
	if raw := strings.TrimSpace(form.Get("max_score")); raw != "" {
		f.MaxScore, _ = strconv.Atoi(raw)
	}
	if raw := strings.TrimSpace(form.Get("due_date")); raw != "" {
		if t, err := time.ParseInLocation(DueDateLayout, raw, loc); err == nil {
			f.DueDate = t
		}
	}
	return f
}

// DueDateInput formats the due date for a datetime-local input.
func (f TaskForm) DueDateInput() string {
	if f.DueDate.IsZero() {
		return ""
	}
	return f.DueDate.Format(DueDateLayout)
}

// TaskPayload is the JSON body of task create and update calls.
type TaskPayload struct {
	SubjectID    int64  `json:"subject_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Requirements string `json:"requirements"`
	DueDate      string `json:"due_date"`
	MaxScore     int    `json:"max_score"`
}

// Payload converts the form to its API body. The due date is sent as a UTC
// ISO 8601 timestamp with milliseconds.
func (f TaskForm) Payload() TaskPayload {
	p := TaskPayload{
		SubjectID:    f.SubjectID,
		Title:        f.Title,
		Description:  f.Description,
		Requirements: f.Requirements,
		MaxScore:     f.MaxScore,
	}
	if !f.DueDate.IsZero() {
		p.DueDate = f.DueDate.UTC().Format("2006-01-02T15:04:05.000Z")
	}
	return p
}
