package core

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/admindash/internal/logging"
)

// RecentActivityLimit is how many feed entries the dashboard shows.
const RecentActivityLimit = 8

// DashboardStats are the headline numbers of the dashboard page.
type DashboardStats struct {
	Users        int
	PendingUsers int
	Subjects     int
	Tasks        int
	Recent       []ActivityEntry
}

// count asks for a single-record page so the response carries the total
// without the records.
var count = ListQuery{Page: 1, PageSize: 1}

// DashboardStats fetches the totals concurrently. Any failed count fails
// the whole call; a failed activity read only leaves Recent empty.
func (s *Service) DashboardStats(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		page, err := s.ListUsers(gctx, UserQuery{ListQuery: count})
		stats.Users = page.Total()
		return err
	})
	g.Go(func() error {
		page, err := s.ListUsers(gctx, UserQuery{ListQuery: count, Status: StatusPending})
		stats.PendingUsers = page.Total()
		return err
	})
	g.Go(func() error {
		page, err := s.ListSubjects(gctx, count)
		stats.Subjects = page.Total()
		return err
	})
	g.Go(func() error {
		page, err := s.ListTasks(gctx, TaskQuery{ListQuery: count})
		stats.Tasks = page.Total()
		return err
	})

	if err := g.Wait(); err != nil {
		return DashboardStats{}, err
	}

	recent, err := s.activity.Recent(ctx, RecentActivityLimit)
	if err != nil {
		logging.FromContext(ctx).Warn("activity read failed", "error", err)
	}
	stats.Recent = recent

	return stats, nil
}
