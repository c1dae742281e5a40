package web

import (
	"net/http"

	"github.com/JonMunkholm/admindash/internal/core"
	"github.com/JonMunkholm/admindash/internal/logging"
	"github.com/JonMunkholm/admindash/internal/web/templates"
)

// handleSettings shows the operator profile. When the API cannot provide
// it the form falls back to the session identity.
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request, rs *requestSession) {
	ctx := r.Context()
	page := templates.SettingsPage{Layout: s.layout(r, rs, "Settings", "settings")}

	profile, err := rs.svc.GetProfile(ctx)
	if err != nil {
		logging.FromContext(ctx).Warn("profile load failed", "error", err)
		profile = core.User{Name: rs.User.Name, Email: rs.User.Email}
		page.Warning = "Your profile could not be loaded; showing your sign-in details. " + core.FormatUserError(err)
	}
	page.Profile = profile
	page.Form = core.ProfileForm{Name: profile.Name, Email: profile.Email}

	s.render(w, r, http.StatusOK, templates.Settings(page))
}

// handleUpdateSettings saves the profile and carries the new name and
// email into the session.
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request, rs *requestSession) {
	if !s.parseForm(w, r) {
		return
	}
	ctx := r.Context()
	form := core.DecodeProfileForm(r.PostForm)

	if err := s.validate.Struct(form); err != nil {
		fields, ok := s.invalid(w, r, err)
		if !ok {
			return
		}
		page := templates.SettingsPage{
			Layout:  s.layout(r, rs, "Settings", "settings"),
			Profile: core.User{Name: rs.User.Name, Email: rs.User.Email},
			Form:    form,
			Fields:  fields,
		}
		s.renderForm(w, r, http.StatusUnprocessableEntity, templates.ProfileForm(page), templates.Settings(page))
		return
	}

	updated, err := rs.svc.UpdateProfile(ctx, form)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if updated.Name != "" {
		rs.User.Name = updated.Name
	}
	if updated.Email != "" {
		rs.User.Email = updated.Email
	}
	if err := s.sessions.Save(ctx, rs.Session); err != nil {
		logging.FromContext(ctx).Warn("session save failed", "error", err)
	}

	s.redirectWithFlash(w, r, rs, "/settings", newToast(templates.ToastSuccess, "Profile saved", "Your profile was updated."))
}
