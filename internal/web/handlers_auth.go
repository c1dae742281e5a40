package web

import (
	"net/http"

	"github.com/JonMunkholm/admindash/internal/core"
	"github.com/JonMunkholm/admindash/internal/logging"
	"github.com/JonMunkholm/admindash/internal/web/templates"
)

// handleLoginPage shows the sign-in form, or skips it for a live session.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, err := s.hydrate(r); err == nil {
		redirect(w, r, safeNext(r.URL.Query().Get("next")))
		return
	}

	s.render(w, r, http.StatusOK, templates.Login(templates.LoginPage{
		Layout: templates.Layout{Title: "Sign in"},
		Next:   r.URL.Query().Get("next"),
	}))
}

// handleLogin checks the operator credentials and starts a session.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	ctx := r.Context()
	form := core.DecodeLoginForm(r.PostForm)
	page := templates.LoginPage{
		Layout: templates.Layout{Title: "Sign in"},
		Email:  form.Email,
		Next:   r.PostFormValue("next"),
	}

	if err := s.validate.Struct(form); err != nil {
		fields, ok := s.invalid(w, r, err)
		if !ok {
			return
		}
		page.Fields = fields
		s.render(w, r, http.StatusUnprocessableEntity, templates.Login(page))
		return
	}

	id, err := s.sessions.Authenticate(form.Email, form.Password)
	if err != nil {
		logging.FromContext(ctx).Warn("login rejected", "email", form.Email)
		page.Error = "Invalid email or password."
		s.render(w, r, http.StatusUnauthorized, templates.Login(page))
		return
	}

	sess, err := s.sessions.Start(ctx, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	logging.FromContext(ctx).Info("session started", "session", shortID(sess.ID), "email", id.Email)

	s.setSessionCookie(w, sess)
	s.setFlash(ctx, sess.ID, newToast(templates.ToastSuccess, "Signed in", "Welcome back, "+id.Name+"."))
	redirect(w, r, safeNext(page.Next))
}

// handleLogout ends the session and everything held for it.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(s.cfg.Auth.CookieName); err == nil && c.Value != "" {
		if err := s.sessions.Teardown(r.Context(), c.Value); err != nil {
			logging.FromContext(r.Context()).Error("session teardown failed", "session", shortID(c.Value), "error", err)
		}
	}
	s.clearSessionCookie(w)
	redirect(w, r, "/login")
}
