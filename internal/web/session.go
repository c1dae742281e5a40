package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/JonMunkholm/admindash/internal/apiclient"
	"github.com/JonMunkholm/admindash/internal/auth"
	"github.com/JonMunkholm/admindash/internal/core"
	"github.com/JonMunkholm/admindash/internal/logging"
	"github.com/JonMunkholm/admindash/internal/table"
	"github.com/JonMunkholm/admindash/internal/web/templates"
)

// requestSession is the signed-in session a handler runs for, with the
// service and table state bound to it.
type requestSession struct {
	*auth.Session
	svc    *core.Service
	tables *table.StoreStates
}

// sessionHandler is a handler that needs a signed-in session.
type sessionHandler func(w http.ResponseWriter, r *http.Request, rs *requestSession)

// withSession hydrates the session named by the cookie and passes it to h.
// Requests without a live session are sent to the login page.
func (s *Server) withSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.hydrate(r)
		if err != nil {
			if !errors.Is(err, auth.ErrNoSession) {
				logging.FromContext(r.Context()).Error("session hydrate failed", "error", err)
			}
			s.clearSessionCookie(w)
			s.redirectToLogin(w, r)
			return
		}

		ctx := logging.ContextWithAttrs(r.Context(), "session", shortID(sess.ID))
		h(w, r.WithContext(ctx), s.bind(sess))
	}
}

func (s *Server) hydrate(r *http.Request) (*auth.Session, error) {
	c, err := r.Cookie(s.cfg.Auth.CookieName)
	if err != nil {
		return nil, auth.ErrNoSession
	}
	return s.sessions.Hydrate(r.Context(), c.Value)
}

// bind derives the per-session service and table state.
func (s *Server) bind(sess *auth.Session) *requestSession {
	return &requestSession{
		Session: sess,
		svc:     s.service.Session(sess.ID, sess, sess.User.Email),
		tables:  table.NewStoreStates(s.store, sess.ID, s.sessions.TTL()),
	}
}

func (s *Server) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := "/login"
	if r.Method == http.MethodGet && r.URL.Path != "/" {
		target += "?next=" + url.QueryEscape(r.URL.RequestURI())
	}
	redirect(w, r, target)
}

func (s *Server) setSessionCookie(w http.ResponseWriter, sess *auth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.Auth.CookieName,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   s.cfg.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.Auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// layout fills the page chrome and takes the pending flash. HTMX requests
// render fragments without chrome and leave the flash for the next page.
func (s *Server) layout(r *http.Request, rs *requestSession, title, active string) templates.Layout {
	l := templates.Layout{
		Title:     title,
		Active:    active,
		UserName:  rs.User.Name,
		UserEmail: rs.User.Email,
	}
	if !isHTMX(r) {
		l.Flash = s.popFlash(r.Context(), rs.ID)
	}
	return l
}

// teardownSession drops what the server keeps per session: list fetchers,
// persisted table state, the pending flash and cached API responses.
func (s *Server) teardownSession(ctx context.Context, sessionID string) error {
	s.fetchers.DropSession(sessionID)

	var errs []error
	if err := table.NewStoreStates(s.store, sessionID, 0).ClearAll(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.store.Delete(ctx, flashKey(sessionID)); err != nil {
		errs = append(errs, err)
	}
	if cache := s.service.Cache(); cache != nil {
		for _, resource := range []string{"users", "subjects", "tasks"} {
			if err := cache.Invalidate(ctx, sessionID, resource); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/dashboard"
	}
	return next
}

var _ apiclient.TokenSource = (*auth.Session)(nil)
