package templates

import (
	"html/template"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/admindash/internal/core"
	"github.com/JonMunkholm/admindash/internal/table"
)

// Toast variants.
const (
	ToastSuccess = "success"
	ToastError   = "error"
	ToastWarning = "warning"
	ToastInfo    = "info"
)

// Toast is a transient notification, carried in the HX-Trigger header of
// HTMX responses or as a flash across a redirect.
type Toast struct {
	ID      string `json:"id"`
	Variant string `json:"variant"`
	Title   string `json:"title"`
	Message string `json:"message,omitempty"`
}

// Layout is the chrome shared by every signed-in page.
type Layout struct {
	Title     string
	Active    string
	UserName  string
	UserEmail string
	Flash     *Toast
}

// SignedIn reports whether the navigation should be shown.
func (l Layout) SignedIn() bool { return l.UserEmail != "" }

// Fields maps form fields to their validation message.
type Fields map[string]string

// TablePanel is a data table with its rule editors and pagination.
type TablePanel struct {
	View string
	// Path is the list URL pagination links point at.
	Path string
	// Query is the id of the form whose inputs accompany every panel request.
	Query string

	Table     template.HTML
	Columns   []table.ColumnOption
	Operators []table.Operator
	Filters   []table.FilterRule
	Sorts     []table.SortRule

	Page      int
	PageSize  int
	PageSizes []int
	LastPage  int
	Total     int

	// Error describes a failed refresh; the rows shown are the last good ones.
	Error string
}

func (p TablePanel) HasPrev() bool { return p.Page > 1 }
func (p TablePanel) HasNext() bool { return p.Page < p.LastPage }

// Include is the hx-include selector of panel requests.
func (p TablePanel) Include() string {
	if p.Query == "" {
		return ""
	}
	return "#" + p.Query
}

type LoginPage struct {
	Layout
	Email  string
	Next   string
	Error  string
	Fields Fields
}

type DashboardPage struct {
	Layout
	Stats core.DashboardStats
	Error string
}

type UsersPage struct {
	Layout
	Search   string
	Role     core.Role
	Status   core.Status
	Roles    []core.Role
	Statuses []core.Status
	Panel    TablePanel
}

type UserPage struct {
	Layout
	User     core.User
	Form     core.AccessForm
	Fields   Fields
	Roles    []core.Role
	Statuses []core.Status
}

// SubjectFormView is the subject create and edit form.
type SubjectFormView struct {
	Action string
	Title  string
	Submit string
	Form   core.SubjectForm
	Fields Fields
	// Open shows the create modal on page load.
	Open bool
}

type SubjectsPage struct {
	Layout
	Panel TablePanel
	Form  SubjectFormView
}

type SubjectPage struct {
	Layout
	Subject core.Subject
	Edit    SubjectFormView
	Panel   TablePanel
}

type TasksPage struct {
	Layout
	SubjectID core.ID
	Subjects  []core.Subject
	Panel     TablePanel
}

// TaskFormView is the task create and edit form.
type TaskFormView struct {
	Action   string
	Title    string
	Submit   string
	Cancel   string
	Form     core.TaskForm
	Subjects []core.Subject
	Fields   Fields
}

// Selected reports whether id is the form's subject.
func (v TaskFormView) Selected(id core.ID) bool {
	return v.Form.SubjectID != 0 && string(id) == strconv.FormatInt(v.Form.SubjectID, 10)
}

type TaskPage struct {
	Layout
	Task core.Task
	Edit TaskFormView
}

type TaskNewPage struct {
	Layout
	Form TaskFormView
}

type SettingsPage struct {
	Layout
	Profile core.User
	Form    core.ProfileForm
	Fields  Fields
	Warning string
}

func Login(p LoginPage) templ.Component             { return page("login", p) }
func Dashboard(p DashboardPage) templ.Component     { return page("dashboard", p) }
func Users(p UsersPage) templ.Component             { return page("users", p) }
func User(p UserPage) templ.Component               { return page("user", p) }
func Subjects(p SubjectsPage) templ.Component       { return page("subjects", p) }
func Subject(p SubjectPage) templ.Component         { return page("subject", p) }
func Tasks(p TasksPage) templ.Component             { return page("tasks", p) }
func Task(p TaskPage) templ.Component               { return page("task", p) }
func TaskNew(p TaskNewPage) templ.Component         { return page("task_new", p) }
func Settings(p SettingsPage) templ.Component       { return page("settings", p) }
func UserAccess(p UserPage) templ.Component         { return fragment("user", "user_access", p) }
func ProfileForm(p SettingsPage) templ.Component    { return fragment("settings", "profile_form", p) }
func SubjectForm(v SubjectFormView) templ.Component { return partial("subject_form", v) }
func TaskForm(v TaskFormView) templ.Component       { return partial("task_form", v) }
func Panel(p TablePanel) templ.Component            { return partial("table_panel", p) }

// ErrorAlert is the inline error shown in place of a failed fragment.
func ErrorAlert(message, action, code string) templ.Component {
	return partial("error_alert", map[string]string{"Message": message, "Action": action, "Code": code})
}
