package web

import (
	"net/http"

	"github.com/JonMunkholm/admindash/internal/core"
	"github.com/JonMunkholm/admindash/internal/web/paths"
	"github.com/JonMunkholm/admindash/internal/web/templates"
)

func newSubjectForm(form core.SubjectForm) templates.SubjectFormView {
	return templates.SubjectFormView{
		Action: "/subjects",
		Title:  "New subject",
		Submit: "Create subject",
		Form:   form,
	}
}

func editSubjectForm(id core.ID, form core.SubjectForm) templates.SubjectFormView {
	return templates.SubjectFormView{
		Action: paths.Subject(id),
		Title:  "Edit subject",
		Submit: "Save changes",
		Form:   form,
	}
}

// handleSubjects lists subjects; the create form lives in a modal.
func (s *Server) handleSubjects(w http.ResponseWriter, r *http.Request, rs *requestSession) {
	ctx := r.Context()
	panel, ok := s.listPanel(ctx, w, r, rs, viewSubjects)
	if !ok || s.servePanel(w, r, panel) {
		return
	}

	s.render(w, r, http.StatusOK, templates.Subjects(templates.SubjectsPage{
		Layout: s.layout(r, rs, "Subjects", "subjects"),
		Panel:  panel,
		Form:   newSubjectForm(core.SubjectForm{}),
	}))
}

// handleCreateSubject creates a subject and opens it.
func (s *Server) handleCreateSubject(w http.ResponseWriter, r *http.Request, rs *requestSession) {
	if !s.parseForm(w, r) {
		return
	}
	ctx := r.Context()
	form := core.DecodeSubjectForm(r.PostForm)

	if err := s.validate.Struct(form); err != nil {
		fields, ok := s.invalid(w, r, err)
		if !ok {
			return
		}
		view := newSubjectForm(form)
		view.Fields = fields
		view.Open = true
		if isHTMX(r) {
			s.render(w, r, http.StatusUnprocessableEntity, templates.SubjectForm(view))
			return
		}
		panel, ok := s.listPanel(ctx, w, r, rs, viewSubjects)
		if !ok {
			return
		}
		s.render(w, r, http.StatusUnprocessableEntity, templates.Subjects(templates.SubjectsPage{
			Layout: s.layout(r, rs, "Subjects", "subjects"),
			Panel:  panel,
			Form:   view,
		}))
		return
	}

	created, err := rs.svc.CreateSubject(ctx, form)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	target := "/subjects"
	if created.ID != "" {
		target = paths.Subject(created.ID)
	}
	s.redirectWithFlash(w, r, rs, target, newToast(templates.ToastSuccess, "Subject created", form.Name+" was created."))
}

// subjectPage assembles the subject page with its task table.
func (s *Server) subjectPage(w http.ResponseWriter, r *http.Request, rs *requestSession, subj core.Subject) (templates.SubjectPage, bool) {
	panel, ok := s.listPanel(r.Context(), w, r, rs, viewSubjectTasks)
	if !ok {
		return templates.SubjectPage{}, false
	}
	return templates.SubjectPage{
		Layout:  s.layout(r, rs, subj.Name, "subjects"),
		Subject: subj,
		Edit:    editSubjectForm(subj.ID, core.SubjectFormFrom(subj)),
		Panel:   panel,
	}, true
}

// handleSubject shows a subject, its edit form and its tasks. The task
// table pages locally, so HTMX requests for it are answered with the panel
// alone.
func (s *Server) handleSubject(w http.ResponseWriter, r *http.Request, rs *requestSession) {
	id, err := recordID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if hxTarget(r) == panelTarget {
		panel, ok := s.listPanel(r.Context(), w, r, rs, viewSubjectTasks)
		if ok {
			s.servePanel(w, r, panel)
		}
		return
	}

	subj, err := rs.svc.GetSubject(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	page, ok := s.subjectPage(w, r, rs, subj)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, templates.Subject(page))
}

// handleUpdateSubject saves the edit form.
func (s *Server) handleUpdateSubject(w http.ResponseWriter, r *http.Request, rs *requestSession) {
	id, err := recordID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !s.parseForm(w, r) {
		return
	}
	ctx := r.Context()
	form := core.DecodeSubjectForm(r.PostForm)

	if err := s.validate.Struct(form); err != nil {
		fields, ok := s.invalid(w, r, err)
		if !ok {
			return
		}
		view := editSubjectForm(id, form)
		view.Fields = fields
		if isHTMX(r) {
			s.render(w, r, http.StatusUnprocessableEntity, templates.SubjectForm(view))
			return
		}

		subj, err := rs.svc.GetSubject(ctx, id)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		page, ok := s.subjectPage(w, r, rs, subj)
		if !ok {
			return
		}
		page.Edit = view
		s.render(w, r, http.StatusUnprocessableEntity, templates.Subject(page))
		return
	}

	if _, err := rs.svc.UpdateSubject(ctx, id, form); err != nil {
		s.fail(w, r, err)
		return
	}
	s.redirectWithFlash(w, r, rs, paths.Subject(id), newToast(templates.ToastSuccess, "Subject updated", form.Name+" was saved."))
}

// handleDeleteSubject deletes a subject and returns to the list.
func (s *Server) handleDeleteSubject(w http.ResponseWriter, r *http.Request, rs *requestSession) {
	id, err := recordID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !s.parseForm(w, r) {
		return
	}
	name := r.PostFormValue("name")

	if err := rs.svc.DeleteSubject(r.Context(), id, name); err != nil {
		s.fail(w, r, err)
		return
	}
	s.redirectWithFlash(w, r, rs, "/subjects", newToast(templates.ToastSuccess, "Subject deleted", deletedLabel(name, id)+" was deleted."))
}
