package web

import (
	"net/http"

	"github.com/JonMunkholm/admindash/internal/core"
	"github.com/JonMunkholm/admindash/internal/logging"
	"github.com/JonMunkholm/admindash/internal/web/templates"
)

// handleDashboard shows the headline counts and recent activity. A failed
// count is reported on the page rather than failing it.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, rs *requestSession) {
	ctx := r.Context()
	page := templates.DashboardPage{Layout: s.layout(r, rs, "Dashboard", "dashboard")}

	stats, err := rs.svc.DashboardStats(ctx)
	if err != nil {
		logging.FromContext(ctx).Warn("dashboard stats failed", "error", err)
		page.Error = core.FormatUserError(err)
	}
	page.Stats = stats

	s.render(w, r, http.StatusOK, templates.Dashboard(page))
}
