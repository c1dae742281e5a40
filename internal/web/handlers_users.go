package web

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/admindash/internal/core"
	"github.com/JonMunkholm/admindash/internal/table"
	"github.com/JonMunkholm/admindash/internal/web/templates"
)

// handleUsers lists users with the search, role and status query bar.
func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request, rs *requestSession) {
	ctx := r.Context()
	panel, ok := s.listPanel(ctx, w, r, rs, viewUsers)
	if !ok || s.servePanel(w, r, panel) {
		return
	}

	q := userQuery(r, table.State{})
	s.render(w, r, http.StatusOK, templates.Users(templates.UsersPage{
		Layout:   s.layout(r, rs, "Users", "users"),
		Search:   q.Search,
		Role:     q.Role,
		Status:   q.Status,
		Roles:    core.Roles,
		Statuses: core.Statuses,
		Panel:    panel,
	}))
}

func (s *Server) userPage(rs *requestSession, r *http.Request, u core.User) templates.UserPage {
	return templates.UserPage{
		Layout:   s.layout(r, rs, u.Name, "users"),
		User:     u,
		Form:     core.AccessForm{Role: u.Role, Status: u.Status},
		Roles:    core.Roles,
		Statuses: core.Statuses,
	}
}

// handleUser shows one user's profile and access form.
func (s *Server) handleUser(w http.ResponseWriter, r *http.Request, rs *requestSession) {
	id, err := recordID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	u, err := rs.svc.GetUser(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, templates.User(s.userPage(rs, r, u)))
}

// handleUpdateUser saves the role and status. Only the changed halves are
// sent; when the second call fails the first stays applied and the user
// is told which part was saved.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request, rs *requestSession) {
	id, err := recordID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !s.parseForm(w, r) {
		return
	}
	ctx := r.Context()

	current, err := rs.svc.GetUser(ctx, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	form := core.DecodeAccessForm(r.PostForm)
	page := s.userPage(rs, r, current)
	page.Form = form

	if err := s.validate.Struct(form); err != nil {
		fields, ok := s.invalid(w, r, err)
		if !ok {
			return
		}
		page.Fields = fields
		s.renderForm(w, r, http.StatusUnprocessableEntity, templates.UserAccess(page), templates.User(page))
		return
	}

	res, err := rs.svc.UpdateUserAccess(ctx, current, form)
	if err != nil {
		if !res.Changed() {
			s.fail(w, r, err)
			return
		}
		// The role went through; the form shows what is now stored.
		page.Form.Status = current.Status
		t := newToast(templates.ToastWarning, "Role saved, status not saved", core.FormatUserError(err))
		s.finishAccess(w, r, rs, page, t)
		return
	}

	if !res.Changed() {
		s.finishAccess(w, r, rs, page, newToast(templates.ToastInfo, "No changes", "Role and status are unchanged."))
		return
	}
	s.finishAccess(w, r, rs, page, newToast(templates.ToastSuccess, "Access updated", accessSummary(current.Name, res, form)))
}

// finishAccess shows the saved access form with t: in place for HTMX, or
// after a redirect back to the user page.
func (s *Server) finishAccess(w http.ResponseWriter, r *http.Request, rs *requestSession, page templates.UserPage, t templates.Toast) {
	if isHTMX(r) {
		triggerToast(w, t)
		s.render(w, r, http.StatusOK, templates.UserAccess(page))
		return
	}
	s.redirectWithFlash(w, r, rs, r.URL.Path, t)
}

func accessSummary(name string, res core.AccessResult, form core.AccessForm) string {
	var parts []string
	if res.RoleUpdated {
		parts = append(parts, "role "+string(form.Role))
	}
	if res.StatusUpdated {
		parts = append(parts, "status "+string(form.Status))
	}
	return fmt.Sprintf("%s now has %s.", name, strings.Join(parts, " and "))
}

// handleDeleteUser deletes a user and returns to the list.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request, rs *requestSession) {
	id, err := recordID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !s.parseForm(w, r) {
		return
	}
	name := r.PostFormValue("name")

	if err := rs.svc.DeleteUser(r.Context(), id, name); err != nil {
		s.fail(w, r, err)
		return
	}
	s.redirectWithFlash(w, r, rs, "/users", newToast(templates.ToastSuccess, "User deleted", deletedLabel(name, id)+" was deleted."))
}

// deletedLabel names a deleted record by name, falling back to its id.
func deletedLabel(name string, id core.ID) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return "Record " + string(id)
}
