package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/JonMunkholm/admindash/internal/apiclient"
)

// ListUsers returns one page of users matching q.
func (s *Service) ListUsers(ctx context.Context, q UserQuery) (Page[User], error) {
	return getJSON[Page[User]](ctx, s, UsersPath(q))
}

// GetUser returns the user with id, or ErrNotFound.
func (s *Service) GetUser(ctx context.Context, id ID) (User, error) {
	env, err := getJSON[UserEnvelope](ctx, s, UserPath(id))
	if err != nil {
		return User{}, err
	}
	if env.User == nil {
		return User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return *env.User, nil
}

// GetProfile returns the operator's own account. The profile endpoint may
// answer with a {user} envelope or with the bare user.
func (s *Service) GetProfile(ctx context.Context) (User, error) {
	path := ProfilePath()
	data, err := s.getRaw(ctx, path)
	if err != nil {
		return User{}, err
	}
	u, err := decodeUser(data)
	if err != nil {
		return User{}, &apiclient.ParseError{URL: path, Err: err}
	}
	if u == nil {
		return User{}, fmt.Errorf("profile: %w", ErrNotFound)
	}
	return *u, nil
}

func decodeUser(data []byte) (*User, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var env UserEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if env.User != nil {
		return env.User, nil
	}
	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, err
	}
	if u.ID == "" && u.Email == "" {
		return nil, nil
	}
	return &u, nil
}

// ListSubjects returns one page of subjects.
func (s *Service) ListSubjects(ctx context.Context, q ListQuery) (Page[Subject], error) {
	return getJSON[Page[Subject]](ctx, s, SubjectsPath(q))
}

// SubjectOptions returns the subjects a task can be assigned to.
func (s *Service) SubjectOptions(ctx context.Context) ([]Subject, error) {
	page, err := s.ListSubjects(ctx, ListQuery{Page: 1, PageSize: SubjectOptionsPageSize})
	if err != nil {
		return nil, err
	}
	return page.Records, nil
}

// GetSubject returns the subject with id, or ErrNotFound.
func (s *Service) GetSubject(ctx context.Context, id ID) (Subject, error) {
	env, err := getJSON[SubjectEnvelope](ctx, s, SubjectPath(id))
	if err != nil {
		return Subject{}, err
	}
	if env.Subject == nil {
		return Subject{}, fmt.Errorf("subject %s: %w", id, ErrNotFound)
	}
	return *env.Subject, nil
}

// ListTasks returns one page of tasks matching q.
func (s *Service) ListTasks(ctx context.Context, q TaskQuery) (Page[Task], error) {
	return getJSON[Page[Task]](ctx, s, TasksPath(q))
}

// GetTask returns the task with id, or ErrNotFound.
func (s *Service) GetTask(ctx context.Context, id ID) (Task, error) {
	env, err := getJSON[TaskEnvelope](ctx, s, TaskPath(id))
	if err != nil {
		return Task{}, err
	}
	if env.Task == nil {
		return Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return *env.Task, nil
}

// PrefetchNextUsers warms the cache with the page after page when there
// is one.
func (s *Service) PrefetchNextUsers(q UserQuery, page Page[User]) {
	if page.HasNext() {
		q.Page = page.CurrentPage
		s.prefetch(UsersPath(q.Next()))
	}
}

// PrefetchNextSubjects warms the cache with the page after page.
func (s *Service) PrefetchNextSubjects(q ListQuery, page Page[Subject]) {
	if page.HasNext() {
		q.Page = page.CurrentPage
		s.prefetch(SubjectsPath(q.Next()))
	}
}

// PrefetchNextTasks warms the cache with the page after page.
func (s *Service) PrefetchNextTasks(q TaskQuery, page Page[Task]) {
	if page.HasNext() {
		q.Page = page.CurrentPage
		s.prefetch(TasksPath(q.Next()))
	}
}
