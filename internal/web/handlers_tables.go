package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/admindash/internal/web/templates"
)

// handleTableRules applies one filter or sort editor action and answers
// with the refreshed panel:
//
//	POST /tables/{view}/{filters|sorts}/{add|update|remove|reset|apply}
func (s *Server) handleTableRules(w http.ResponseWriter, r *http.Request, rs *requestSession) {
	if !s.parseForm(w, r) {
		return
	}
	v, err := s.view(chi.URLParam(r, "view"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	action := chi.URLParam(r, "action")
	panel, err := v.edit(r.Context(), rs, r, chi.URLParam(r, "kind"), action)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	switch action {
	case "apply":
		triggerToast(w, newToast(templates.ToastSuccess, "Table saved", "Your filters and sorting will be restored next time."))
	case "reset":
		triggerToast(w, newToast(templates.ToastInfo, "Table reset", ""))
	}
	s.render(w, r, http.StatusOK, templates.Panel(panel))
}
