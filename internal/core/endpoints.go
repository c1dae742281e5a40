package core

import (
	"net/url"

	"github.com/JonMunkholm/admindash/internal/apiclient"
)

// APIPrefix is the path prefix of every admin API route.
const APIPrefix = "/api/admin"

// ListQuery is the pagination shared by every list endpoint.
type ListQuery struct {
	Page     int
	PageSize int
}

func (q ListQuery) params() map[string]any {
	m := map[string]any{}
	if q.Page > 0 {
		m["page"] = q.Page
	}
	if q.PageSize > 0 {
		m["page_size"] = q.PageSize
	}
	return m
}

// Next returns the query for the following page.
func (q ListQuery) Next() ListQuery {
	q.Page++
	return q
}

// UserQuery filters the users list. Empty fields are omitted from the URL.
type UserQuery struct {
	ListQuery
	Search string
	Role   Role
	Status Status
}

// Next returns the query for the following page.
func (q UserQuery) Next() UserQuery {
	q.ListQuery = q.ListQuery.Next()
	return q
}

// TaskQuery filters the tasks list, optionally to one subject.
type TaskQuery struct {
	ListQuery
	SubjectID ID
}

// Next returns the query for the following page.
func (q TaskQuery) Next() TaskQuery {
	q.ListQuery = q.ListQuery.Next()
	return q
}

// UsersPath is GET /api/admin/users with q's parameters.
func UsersPath(q UserQuery) string {
	p := q.params()
	p["search"] = q.Search
	p["role"] = string(q.Role)
	p["status"] = string(q.Status)
	return withQuery(APIPrefix+"/users", p)
}

// UserPath addresses one user.
func UserPath(id ID) string {
	return APIPrefix + "/users/" + url.PathEscape(string(id))
}

// UserRolePath is PUT /api/admin/users/{id}/role.
func UserRolePath(id ID) string {
	return UserPath(id) + "/role"
}

// UserStatusPath is PUT /api/admin/users/{id}/status.
func UserStatusPath(id ID) string {
	return UserPath(id) + "/status"
}

// ProfilePath addresses the signed-in operator's profile.
func ProfilePath() string {
	return APIPrefix + "/users/profile"
}

// SubjectsPath lists subjects. With a zero query it is the create
// endpoint.
func SubjectsPath(q ListQuery) string {
	return withQuery(APIPrefix+"/subjects", q.params())
}

// SubjectPath addresses one subject.
func SubjectPath(id ID) string {
	return APIPrefix + "/subjects/" + url.PathEscape(string(id))
}

// TasksPath lists tasks, optionally for one subject. With a zero query it
// is the create endpoint.
func TasksPath(q TaskQuery) string {
	p := q.params()
	p["subject_id"] = string(q.SubjectID)
	return withQuery(APIPrefix+"/tasks", p)
}

// TaskPath addresses one task.
func TaskPath(id ID) string {
	return APIPrefix + "/tasks/" + url.PathEscape(string(id))
}

// withQuery appends the query string unless every parameter was empty.
func withQuery(path string, params map[string]any) string {
	if qs := apiclient.BuildQueryParams(params); qs != "?" {
		return path + qs
	}
	return path
}
