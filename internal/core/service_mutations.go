package core

import (
	"context"
	"fmt"
	"net/http"
)

// AccessResult reports which halves of an access update were applied.
type AccessResult struct {
	RoleUpdated   bool
	StatusUpdated bool
}

// Changed reports whether anything was sent.
func (r AccessResult) Changed() bool {
	return r.RoleUpdated || r.StatusUpdated
}

// UpdateUserRole sets the role of user id.
func (s *Service) UpdateUserRole(ctx context.Context, id ID, role Role) error {
	if !role.Valid() {
		return fmt.Errorf("invalid role %q", role)
	}
	_, err := mutate[MessageResponse](ctx, s, UserRolePath(id), http.MethodPut, map[string]Role{"role": role})
	if err != nil {
		return err
	}
	s.record(ctx, ActivityEntry{
		Action:     ActionUserRole,
		Resource:   "users",
		ResourceID: id,
		Title:      "User role changed",
		Detail:     fmt.Sprintf("User %s is now %s", id, role),
	})
	return nil
}

// UpdateUserStatus sets the status of user id.
func (s *Service) UpdateUserStatus(ctx context.Context, id ID, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("invalid status %q", status)
	}
	_, err := mutate[MessageResponse](ctx, s, UserStatusPath(id), http.MethodPut, map[string]Status{"status": status})
	if err != nil {
		return err
	}
	s.record(ctx, ActivityEntry{
		Action:     ActionUserStatus,
		Resource:   "users",
		ResourceID: id,
		Title:      "User status changed",
		Detail:     fmt.Sprintf("User %s is now %s", id, status),
	})
	return nil
}

// UpdateUserAccess applies form to current: the role first, then the
// status, each only when it differs. The two calls are independent, so the
// role can be saved while the status fails; nothing is rolled back and the
// result says what was applied.
func (s *Service) UpdateUserAccess(ctx context.Context, current User, form AccessForm) (AccessResult, error) {
	var res AccessResult

	if form.Role != current.Role {
		if err := s.UpdateUserRole(ctx, current.ID, form.Role); err != nil {
			return res, err
		}
		res.RoleUpdated = true
	}

	if form.Status != current.Status {
		if err := s.UpdateUserStatus(ctx, current.ID, form.Status); err != nil {
			return res, err
		}
		res.StatusUpdated = true
	}

	return res, nil
}

// DeleteUser deletes user id. name labels the activity entry.
func (s *Service) DeleteUser(ctx context.Context, id ID, name string) error {
	if _, err := mutate[MessageResponse](ctx, s, UserPath(id), http.MethodDelete, nil); err != nil {
		return err
	}
	s.record(ctx, ActivityEntry{
		Action:     ActionUserDelete,
		Resource:   "users",
		ResourceID: id,
		Title:      "User deleted",
		Detail:     label(name, id),
	})
	return nil
}

// UpdateProfile saves the operator's name and email and returns the
// updated account when the API echoes it.
func (s *Service) UpdateProfile(ctx context.Context, form ProfileForm) (User, error) {
	env, err := mutate[UserEnvelope](ctx, s, ProfilePath(), http.MethodPut, form)
	if err != nil {
		return User{}, err
	}
	s.record(ctx, ActivityEntry{
		Action:   ActionProfileUpdate,
		Resource: "users",
		Title:    "Profile updated",
		Detail:   form.Name,
	})
	if env.User == nil {
		return User{Name: form.Name, Email: form.Email}, nil
	}
	return *env.User, nil
}

// CreateSubject creates a subject.
func (s *Service) CreateSubject(ctx context.Context, form SubjectForm) (Subject, error) {
	env, err := mutate[SubjectEnvelope](ctx, s, SubjectsPath(ListQuery{}), http.MethodPost, form)
	if err != nil {
		return Subject{}, err
	}
	created := Subject{Name: form.Name, Description: form.Description}
	if env.Subject != nil {
		created = *env.Subject
	}
	s.record(ctx, ActivityEntry{
		Action:     ActionSubjectCreate,
		Resource:   "subjects",
		ResourceID: created.ID,
		Title:      "New subject created",
		Detail:     form.Name,
	})
	return created, nil
}

// UpdateSubject saves form onto subject id.
func (s *Service) UpdateSubject(ctx context.Context, id ID, form SubjectForm) (Subject, error) {
	env, err := mutate[SubjectEnvelope](ctx, s, SubjectPath(id), http.MethodPut, form)
	if err != nil {
		return Subject{}, err
	}
	updated := Subject{ID: id, Name: form.Name, Description: form.Description}
	if env.Subject != nil {
		updated = *env.Subject
	}
	s.record(ctx, ActivityEntry{
		Action:     ActionSubjectUpdate,
		Resource:   "subjects",
		ResourceID: id,
		Title:      "Subject updated",
		Detail:     form.Name,
	})
	return updated, nil
}

// DeleteSubject deletes subject id. Its tasks may go with it, so cached
// task lists are dropped too.
func (s *Service) DeleteSubject(ctx context.Context, id ID, name string) error {
	if _, err := mutate[MessageResponse](ctx, s, SubjectPath(id), http.MethodDelete, nil, "subjects", "tasks"); err != nil {
		return err
	}
	s.record(ctx, ActivityEntry{
		Action:     ActionSubjectDelete,
		Resource:   "subjects",
		ResourceID: id,
		Title:      "Subject deleted",
		Detail:     label(name, id),
	})
	return nil
}

// CreateTask creates a task. Subject pages list tasks, so both caches are
// dropped.
func (s *Service) CreateTask(ctx context.Context, form TaskForm) (Task, error) {
	env, err := mutate[TaskEnvelope](ctx, s, TasksPath(TaskQuery{}), http.MethodPost, form.Payload(), "tasks", "subjects")
	if err != nil {
		return Task{}, err
	}
	var created Task
	if env.Task != nil {
		created = *env.Task
	}
	s.record(ctx, ActivityEntry{
		Action:     ActionTaskCreate,
		Resource:   "tasks",
		ResourceID: created.ID,
		Title:      "New task created",
		Detail:     form.Title,
	})
	return created, nil
}

// UpdateTask saves form onto task id.
func (s *Service) UpdateTask(ctx context.Context, id ID, form TaskForm) (Task, error) {
	env, err := mutate[TaskEnvelope](ctx, s, TaskPath(id), http.MethodPut, form.Payload(), "tasks", "subjects")
	if err != nil {
		return Task{}, err
	}
	updated := Task{ID: id}
	if env.Task != nil {
		updated = *env.Task
	}
	s.record(ctx, ActivityEntry{
		Action:     ActionTaskUpdate,
		Resource:   "tasks",
		ResourceID: id,
		Title:      "Task updated",
		Detail:     form.Title,
	})
	return updated, nil
}

// DeleteTask deletes task id. title labels the activity entry.
func (s *Service) DeleteTask(ctx context.Context, id ID, title string) error {
	if _, err := mutate[MessageResponse](ctx, s, TaskPath(id), http.MethodDelete, nil, "tasks", "subjects"); err != nil {
		return err
	}
	s.record(ctx, ActivityEntry{
		Action:     ActionTaskDelete,
		Resource:   "tasks",
		ResourceID: id,
		Title:      "Task deleted",
		Detail:     label(title, id),
	})
	return nil
}

func label(name string, id ID) string {
	if name != "" {
		return name
	}
	return "#" + string(id)
}
