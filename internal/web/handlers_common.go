package web

// This file contains request parsing and response helpers shared by the
// page handlers.

import (
	"context"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/admindash/internal/core"
	"github.com/JonMunkholm/admindash/internal/logging"
	"github.com/JonMunkholm/admindash/internal/table"
	"github.com/JonMunkholm/admindash/internal/web/paths"
	"github.com/JonMunkholm/admindash/internal/web/templates"
)

// panelTarget is the element id HTMX table requests swap.
const panelTarget = "table-panel"

// fail answers err with the status statusFor picks.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.respondError(w, r, err, statusFor(err))
}

// recordID decodes the {id} segment of a record URL.
func recordID(r *http.Request) (core.ID, error) {
	return paths.DecodeID(chi.URLParam(r, "id"))
}

// parseForm parses the request body, answering the request itself on
// failure.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return false
	}
	return true
}

// invalid reports field messages when err is a validation failure. Any
// other error has already been answered and ok is false.
func (s *Server) invalid(w http.ResponseWriter, r *http.Request, err error) (fields templates.Fields, ok bool) {
	if verrs, isValidation := core.AsValidationErrors(err); isValidation {
		return verrs.Fields(), true
	}
	s.fail(w, r, err)
	return nil, false
}

// renderForm answers a form post that has to be shown again: the form
// fragment for HTMX requests, otherwise the whole page.
func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, status int, fragment, page templ.Component) {
	if isHTMX(r) {
		s.render(w, r, status, fragment)
		return
	}
	s.render(w, r, status, page)
}

// listPanel loads the named table for a list page. HTMX panel requests
// that fail are answered here; a full page load keeps rendering with the
// failure shown in place of the table.
func (s *Server) listPanel(ctx context.Context, w http.ResponseWriter, r *http.Request, rs *requestSession, view string) (templates.TablePanel, bool) {
	v, err := s.view(view)
	if err == nil {
		var panel templates.TablePanel
		if panel, err = v.panel(ctx, rs, r); err == nil {
			return panel, true
		}
	}

	if hxTarget(r) == panelTarget {
		s.fail(w, r, err)
		return templates.TablePanel{}, false
	}
	logging.FromContext(ctx).Warn("table load failed", "view", view, "error", err)
	return errorPanel(view, err), true
}

// servePanel answers an HTMX table request with the panel alone and
// reports whether it did.
func (s *Server) servePanel(w http.ResponseWriter, r *http.Request, panel templates.TablePanel) bool {
	if hxTarget(r) != panelTarget {
		return false
	}
	s.render(w, r, http.StatusOK, templates.Panel(panel))
	return true
}

func errorPanel(view string, err error) templates.TablePanel {
	return templates.TablePanel{
		View:      view,
		Error:     core.FormatUserError(err),
		Page:      1,
		LastPage:  1,
		PageSizes: table.PageSizes,
	}
}
