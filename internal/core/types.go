package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Role is a user's access level.
type Role string

const (
	RoleTrainee Role = "trainee"
	RoleAdmin   Role = "admin"
)

// Roles lists the valid roles in display order.
var Roles = []Role{RoleTrainee, RoleAdmin}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleTrainee || r == RoleAdmin
}

// Status is a user's approval state.
type Status string

const (
	StatusApproved Status = "approved"
	StatusPending  Status = "pending"
)

// Statuses lists the valid statuses in display order.
var Statuses = []Status{StatusApproved, StatusPending}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusApproved || s == StatusPending
}

// ID identifies a record. The API sends ids as JSON numbers for subjects
// and tasks and as strings for some user payloads; both decode to ID.
type ID string

// UnmarshalJSON accepts a JSON string, number or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid id %s: %w", data, err)
		}
		*id = ID(n.String())
	}
	return nil
}

// MarshalJSON writes numeric ids as numbers and anything else as a string.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.Numeric() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Numeric reports whether the id is a non-negative integer.
func (id ID) Numeric() bool {
	if id == "" {
		return false
	}
	_, err := strconv.ParseUint(string(id), 10, 64)
	return err == nil
}

func (id ID) String() string { return string(id) }

// Timestamp is a time that tolerates the formats the API has been seen to
// send. Empty strings and null decode to the zero time.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// UnmarshalJSON parses any of timestampLayouts.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", data, err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

// MarshalJSON writes RFC 3339, or an empty string for the zero time.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

// Date formats the date part for tables, or "" for the zero time.
func (t Timestamp) Date() string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// DateTime formats date and time for detail views.
func (t Timestamp) DateTime() string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006 15:04")
}

// String formats the date as YYYY-MM-DD so that string order is time
// order when tables sort on it.
func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// User is an account managed through the admin API.
type User struct {
	ID        ID        `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	GoogleID  string    `json:"google_id,omitempty"`
	Role      Role      `json:"role"`
	Status    Status    `json:"status"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// Subject groups tasks.
type Subject struct {
	ID            ID        `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	CreatedBy     ID        `json:"created_by"`
	CreatedByName string    `json:"created_by_name,omitempty"`
	CreatedAt     Timestamp `json:"created_at"`
}

// Task belongs to a subject.
type Task struct {
	ID            ID        `json:"id"`
	SubjectID     ID        `json:"subject_id"`
	SubjectName   string    `json:"subject_name,omitempty"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Requirements  string    `json:"requirements"`
	DueDate       Timestamp `json:"due_date"`
	MaxScore      int       `json:"max_score"`
	IsActive      bool      `json:"is_active"`
	CreatedBy     ID        `json:"created_by"`
	CreatedByName string    `json:"created_by_name,omitempty"`
	CreatedAt     Timestamp `json:"created_at"`
	UpdatedAt     Timestamp `json:"updated_at"`
}

// Page is the shape shared by every paginated list response.
type Page[T any] struct {
	Records     []T    `json:"records"`
	Domain      string `json:"domain"`
	CurrentPage int    `json:"current_page"`
	LastPage    int    `json:"last_page"`
	PageSize    int    `json:"page_size"`
	TotalCount  int    `json:"total_count,omitempty"`
}

// HasNext reports whether a page follows this one.
func (p Page[T]) HasNext() bool {
	return p.CurrentPage > 0 && p.CurrentPage < p.LastPage
}

// Total returns TotalCount when the API sent it, otherwise an upper bound
// derived from LastPage and PageSize.
func (p Page[T]) Total() int {
	if p.TotalCount > 0 {
		return p.TotalCount
	}
	if p.LastPage <= 1 {
		return len(p.Records)
	}
	return p.LastPage * p.PageSize
}

// UserEnvelope wraps a single user response.
type UserEnvelope struct {
	User    *User  `json:"user"`
	Message string `json:"message,omitempty"`
}

// SubjectEnvelope wraps a single subject response.
type SubjectEnvelope struct {
	Subject *Subject `json:"subject"`
	Message string   `json:"message,omitempty"`
}

// TaskEnvelope wraps a single task response.
type TaskEnvelope struct {
	Task    *Task  `json:"task"`
	Message string `json:"message,omitempty"`
}

// MessageResponse is the body of mutations that only acknowledge.
type MessageResponse struct {
	Message string `json:"message,omitempty"`
}
