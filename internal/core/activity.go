package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/admindash/internal/store"
)

// DefaultActivityLimit caps the recent activity feed.
const DefaultActivityLimit = 20

// activityKey holds the feed in the shared store.
const activityKey = "activity:recent"

// ActivityAction is the kind of change recorded in the feed.
type ActivityAction string

const (
	ActionUserRole      ActivityAction = "user_role"
	ActionUserStatus    ActivityAction = "user_status"
	ActionUserDelete    ActivityAction = "user_delete"
	ActionProfileUpdate ActivityAction = "profile_update"
	ActionSubjectCreate ActivityAction = "subject_create"
	ActionSubjectUpdate ActivityAction = "subject_update"
	ActionSubjectDelete ActivityAction = "subject_delete"
	ActionTaskCreate    ActivityAction = "task_create"
	ActionTaskUpdate    ActivityAction = "task_update"
	ActionTaskDelete    ActivityAction = "task_delete"
)

// ActivitySeverity ranks how disruptive a change was.
type ActivitySeverity string

const (
	SeverityLow    ActivitySeverity = "low"
	SeverityMedium ActivitySeverity = "medium"
	SeverityHigh   ActivitySeverity = "high"
)

// ActivityEntry is one line of the dashboard's recent activity.
type ActivityEntry struct {
	ID         string           `json:"id"`
	Action     ActivityAction   `json:"action"`
	Severity   ActivitySeverity `json:"severity"`
	Resource   string           `json:"resource"`
	ResourceID ID               `json:"resourceId,omitempty"`
	Title      string           `json:"title"`
	Detail     string           `json:"detail,omitempty"`
	Actor      string           `json:"actor,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// Tone picks the dot color shown next to the entry.
func (e ActivityEntry) Tone() string {
	switch e.Severity {
	case SeverityHigh:
		return "red"
	case SeverityLow:
		return "green"
	}
	switch e.Resource {
	case "users":
		return "blue"
	case "subjects":
		return "purple"
	}
	return "green"
}

// determineSeverity returns the appropriate severity for an action.
func determineSeverity(action ActivityAction) ActivitySeverity {
	switch action {
	case ActionUserDelete, ActionSubjectDelete, ActionTaskDelete:
		return SeverityHigh
	case ActionProfileUpdate:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// Activity is a capped, newest-first feed of successful mutations kept in
// the shared store, so every session sees the same feed.
type Activity struct {
	store store.Store
	limit int
	now   func() time.Time

	mu sync.Mutex
}

// NewActivity keeps up to limit entries in s.
func NewActivity(s store.Store, limit int) *Activity {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	return &Activity{store: s, limit: limit, now: time.Now}
}

// Record prepends e to the feed, filling in its id, severity and time.
func (a *Activity) Record(ctx context.Context, e ActivityEntry) error {
	if a == nil {
		return nil
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Severity == "" {
		e.Severity = determineSeverity(e.Action)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = a.now()
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	entries, err := a.load(ctx)
	if err != nil {
		return err
	}
	entries = append([]ActivityEntry{e}, entries...)
	if len(entries) > a.limit {
		entries = entries[:a.limit]
	}
	if err := store.SetJSON(ctx, a.store, activityKey, entries, 0); err != nil {
		return fmt.Errorf("save activity: %w", err)
	}
	return nil
}

// Recent returns up to n entries, newest first. n <= 0 returns them all.
func (a *Activity) Recent(ctx context.Context, n int) ([]ActivityEntry, error) {
	if a == nil {
		return nil, nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	entries, err := a.load(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

func (a *Activity) load(ctx context.Context) ([]ActivityEntry, error) {
	entries, err := store.GetJSON[[]ActivityEntry](ctx, a.store, activityKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load activity: %w", err)
	}
	return entries, nil
}
