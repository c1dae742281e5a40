package core

import "testing"

func TestEndpoints(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"users first page", UsersPath(UserQuery{ListQuery: ListQuery{Page: 1, PageSize: 5}}), "/api/admin/users?page=1&page_size=5"},
		{"users filters", UsersPath(UserQuery{ListQuery: ListQuery{Page: 2, PageSize: 10}, Search: "ada lovelace", Role: RoleAdmin, Status: StatusPending}),
			"/api/admin/users?page=2&page_size=10&role=admin&search=ada+lovelace&status=pending"},
		{"users empty search omitted", UsersPath(UserQuery{ListQuery: ListQuery{Page: 1}, Search: ""}), "/api/admin/users?page=1"},
		{"user", UserPath("7"), "/api/admin/users/7"},
		{"user role", UserRolePath("7"), "/api/admin/users/7/role"},
		{"user status", UserStatusPath("7"), "/api/admin/users/7/status"},
		{"user id escaped", UserPath("a/b"), "/api/admin/users/a%2Fb"},
		{"profile", ProfilePath(), "/api/admin/users/profile"},
		{"subjects", SubjectsPath(ListQuery{Page: 1, PageSize: 10}), "/api/admin/subjects?page=1&page_size=10"},
		{"subjects create", SubjectsPath(ListQuery{}), "/api/admin/subjects"},
		{"subject", SubjectPath("3"), "/api/admin/subjects/3"},
		{"tasks by subject", TasksPath(TaskQuery{ListQuery: ListQuery{Page: 1, PageSize: 5}, SubjectID: "3"}), "/api/admin/tasks?page=1&page_size=5&subject_id=3"},
		{"tasks create", TasksPath(TaskQuery{}), "/api/admin/tasks"},
		{"task", TaskPath("11"), "/api/admin/tasks/11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestQueryNext(t *testing.T) {
	q := UserQuery{ListQuery: ListQuery{Page: 2, PageSize: 5}, Search: "bo"}
	next := q.Next()

	if next.Page != 3 || next.PageSize != 5 || next.Search != "bo" {
		t.Errorf("Next() = %+v", next)
	}
	if q.Page != 2 {
		t.Error("Next() must not modify the receiver")
	}
}
