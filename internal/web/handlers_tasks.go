package web

import (
	"context"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/admindash/internal/core"
	"github.com/JonMunkholm/admindash/internal/logging"
	"github.com/JonMunkholm/admindash/internal/web/paths"
	"github.com/JonMunkholm/admindash/internal/web/templates"
)

// subjectOptions lists the subjects a task can belong to. A failure only
// empties the choices.
func (s *Server) subjectOptions(ctx context.Context, rs *requestSession) []core.Subject {
	subjects, err := rs.svc.SubjectOptions(ctx)
	if err != nil {
		logging.FromContext(ctx).Warn("subject options failed", "error", err)
		return nil
	}
	return subjects
}

// tasksHome is where a task's pages lead back to: its subject when known.
func tasksHome(subject core.ID) string {
	if subject == "" {
		return "/tasks"
	}
	return paths.Subject(subject)
}

func formSubject(form core.TaskForm) core.ID {
	if form.SubjectID <= 0 {
		return ""
	}
	return core.ID(strconv.FormatInt(form.SubjectID, 10))
}

func (s *Server) newTaskForm(ctx context.Context, rs *requestSession, form core.TaskForm) templates.TaskFormView {
	return templates.TaskFormView{
		Action:   "/tasks",
		Title:    "New task",
		Submit:   "Create task",
		Cancel:   tasksHome(formSubject(form)),
		Form:     form,
		Subjects: s.subjectOptions(ctx, rs),
	}
}

func (s *Server) editTaskForm(ctx context.Context, rs *requestSession, t core.Task, form core.TaskForm) templates.TaskFormView {
	return templates.TaskFormView{
		Action:   paths.Task(t.ID),
		Title:    "Edit task",
		Submit:   "Save changes",
		Cancel:   tasksHome(t.SubjectID),
		Form:     form,
		Subjects: s.subjectOptions(ctx, rs),
	}
}

// handleTasks lists tasks, optionally narrowed to one subject.
func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request, rs *requestSession) {
	ctx := r.Context()
	panel, ok := s.listPanel(ctx, w, r, rs, viewTasks)
	if !ok || s.servePanel(w, r, panel) {
		return
	}

	s.render(w, r, http.StatusOK, templates.Tasks(templates.TasksPage{
		Layout:    s.layout(r, rs, "Tasks", "tasks"),
		SubjectID: core.ID(r.FormValue("subject_id")),
		Subjects:  s.subjectOptions(ctx, rs),
		Panel:     panel,
	}))
}

// handleNewTask shows the create form, preselecting ?subject_id.
func (s *Server) handleNewTask(w http.ResponseWriter, r *http.Request, rs *requestSession) {
	ctx := r.Context()
	form := core.NewTaskForm(core.ID(r.URL.Query().Get("subject_id")))
	s.render(w, r, http.StatusOK, templates.TaskNew(templates.TaskNewPage{
		Layout: s.layout(r, rs, "New task", "tasks"),
		Form:   s.newTaskForm(ctx, rs, form),
	}))
}

// handleCreateTask creates a task and opens it.
func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request, rs *requestSession) {
	if !s.parseForm(w, r) {
		return
	}
	ctx := r.Context()
	form := core.DecodeTaskForm(r.PostForm, s.loc)

	if err := s.validate.Struct(form); err != nil {
		fields, ok := s.invalid(w, r, err)
		if !ok {
			return
		}
		view := s.newTaskForm(ctx, rs, form)
		view.Fields = fields
		s.renderForm(w, r, http.StatusUnprocessableEntity, templates.TaskForm(view), templates.TaskNew(templates.TaskNewPage{
			Layout: s.layout(r, rs, "New task", "tasks"),
			Form:   view,
		}))
		return
	}

	created, err := rs.svc.CreateTask(ctx, form)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	target := tasksHome(formSubject(form))
	if created.ID != "" {
		target = paths.Task(created.ID)
	}
	s.redirectWithFlash(w, r, rs, target, newToast(templates.ToastSuccess, "Task created", form.Title+" was created."))
}

// handleTask shows a task with its edit form.
func (s *Server) handleTask(w http.ResponseWriter, r *http.Request, rs *requestSession) {
	id, err := recordID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ctx := r.Context()

	t, err := rs.svc.GetTask(ctx, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, templates.Task(templates.TaskPage{
		Layout: s.layout(r, rs, t.Title, "tasks"),
		Task:   t,
		Edit:   s.editTaskForm(ctx, rs, t, core.TaskFormFrom(t)),
	}))
}

// handleUpdateTask saves the edit form.
func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request, rs *requestSession) {
	id, err := recordID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !s.parseForm(w, r) {
		return
	}
	ctx := r.Context()
	form := core.DecodeTaskForm(r.PostForm, s.loc)

	if err := s.validate.Struct(form); err != nil {
		fields, ok := s.invalid(w, r, err)
		if !ok {
			return
		}
		t, err := rs.svc.GetTask(ctx, id)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		view := s.editTaskForm(ctx, rs, t, form)
		view.Fields = fields
		s.renderForm(w, r, http.StatusUnprocessableEntity, templates.TaskForm(view), templates.Task(templates.TaskPage{
			Layout: s.layout(r, rs, t.Title, "tasks"),
			Task:   t,
			Edit:   view,
		}))
		return
	}

	if _, err := rs.svc.UpdateTask(ctx, id, form); err != nil {
		s.fail(w, r, err)
		return
	}
	s.redirectWithFlash(w, r, rs, paths.Task(id), newToast(templates.ToastSuccess, "Task updated", form.Title+" was saved."))
}

// handleDeleteTask deletes a task and returns to its subject.
func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request, rs *requestSession) {
	id, err := recordID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !s.parseForm(w, r) {
		return
	}
	title := r.PostFormValue("title")

	if err := rs.svc.DeleteTask(r.Context(), id, title); err != nil {
		s.fail(w, r, err)
		return
	}
	target := tasksHome(core.ID(r.PostFormValue("subject")))
	s.redirectWithFlash(w, r, rs, target, newToast(templates.ToastSuccess, "Task deleted", deletedLabel(title, id)+" was deleted."))
}
