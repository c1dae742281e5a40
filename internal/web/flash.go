package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"github.com/google/uuid"

	"github.com/JonMunkholm/admindash/internal/logging"
	"github.com/JonMunkholm/admindash/internal/store"
	"github.com/JonMunkholm/admindash/internal/web/templates"
)

func newToast(variant, title, message string) templates.Toast {
	return templates.Toast{ID: uuid.NewString(), Variant: variant, Title: title, Message: message}
}

// triggerToast asks the page to show t once the HTMX response is handled.
func triggerToast(w http.ResponseWriter, t templates.Toast) {
	payload, err := json.Marshal(map[string]templates.Toast{"showToast": t})
	if err != nil {
		return
	}
	w.Header().Set("HX-Trigger", string(payload))
}

func flashKey(sessionID string) string {
	return store.Key("flash", sessionID)
}

// setFlash keeps t for the next page the session renders.
func (s *Server) setFlash(ctx context.Context, sessionID string, t templates.Toast) {
	if err := store.SetJSON(ctx, s.store, flashKey(sessionID), t, s.sessions.TTL()); err != nil {
		logging.FromContext(ctx).Warn("flash save failed", "error", err)
	}
}

// popFlash returns and clears the pending flash, if any.
func (s *Server) popFlash(ctx context.Context, sessionID string) *templates.Toast {
	t, err := store.GetJSON[templates.Toast](ctx, s.store, flashKey(sessionID))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logging.FromContext(ctx).Warn("flash read failed", "error", err)
		}
		return nil
	}
	if err := s.store.Delete(ctx, flashKey(sessionID)); err != nil {
		logging.FromContext(ctx).Warn("flash clear failed", "error", err)
	}
	return &t
}

// redirectWithFlash finishes a mutation by navigating to target, which
// shows t. HTMX requests get an HX-Redirect instead of a 303.
func (s *Server) redirectWithFlash(w http.ResponseWriter, r *http.Request, rs *requestSession, target string, t templates.Toast) {
	s.setFlash(r.Context(), rs.ID, t)
	redirect(w, r, target)
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// render writes c with the given status.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render failed", "path", r.URL.Path, "error", err)
	}
}
