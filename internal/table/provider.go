package table

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/JonMunkholm/admindash/internal/store"
)

// DefaultPageSize is the page size of a provider configured without one.
const DefaultPageSize = 5

// PageSizes are the choices offered by the pagination controls.
var PageSizes = []int{5, 10, 20, 50}

// Mode selects where pagination happens.
type Mode int

const (
	// PaginateServer leaves page and page size as shared state for the
	// upstream query; the view is every filtered, sorted row.
	PaginateServer Mode = iota

	// PaginateClient slices the filtered, sorted rows to the current page.
	PaginateClient
)

// State is the persisted part of a table.
type State struct {
	Filters  []FilterRule `json:"filters"`
	Sorts    []SortRule   `json:"sorts"`
	Page     int          `json:"page"`
	PageSize int          `json:"pageSize"`
}

func (s State) clone() State {
	s.Filters = slices.Clone(s.Filters)
	s.Sorts = slices.Clone(s.Sorts)
	return s
}

// normalize fills the page defaults.
func (s State) normalize(pageSize int) State {
	if s.Page < 1 {
		s.Page = 1
	}
	if s.PageSize < 1 {
		s.PageSize = pageSize
	}
	if s.PageSize < 1 {
		s.PageSize = DefaultPageSize
	}
	return s
}

// StateStore persists table state by key.
type StateStore interface {
	Load(ctx context.Context, key string) (State, bool, error)
	Save(ctx context.Context, key string, s State) error
	Clear(ctx context.Context, key string) error
}

// Config configures a Provider.
type Config struct {
	// Key names the persisted state. An empty key disables persistence.
	Key   string
	Store StateStore
	Mode  Mode

	// Initial is used when nothing is persisted under Key.
	Initial State

	// DefaultPageSize applies when Initial has no page size.
	DefaultPageSize int
}

// Provider holds raw rows and table state and keeps a derived view of
// them current.
type Provider[T any] struct {
	cfg      Config
	data     []T
	state    State
	filtered []T
	view     []T
}

// NewProvider builds a provider over data, restoring state persisted under
// cfg.Key when there is any. Construction itself never writes.
func NewProvider[T any](ctx context.Context, cfg Config, data []T) (*Provider[T], error) {
	p := &Provider[T]{
		cfg:   cfg,
		data:  data,
		state: cfg.Initial.clone().normalize(cfg.DefaultPageSize),
	}

	if p.persistent() {
		saved, ok, err := cfg.Store.Load(ctx, cfg.Key)
		if err != nil {
			return nil, fmt.Errorf("restore table %s: %w", cfg.Key, err)
		}
		if ok {
			p.state = saved.normalize(p.state.PageSize)
		}
	}

	p.recompute()
	return p, nil
}

func (p *Provider[T]) persistent() bool {
	return p.cfg.Store != nil && p.cfg.Key != ""
}

// Key returns the persistence key.
func (p *Provider[T]) Key() string { return p.cfg.Key }

// Mode returns the pagination mode.
func (p *Provider[T]) Mode() Mode { return p.cfg.Mode }

// Data returns the raw rows.
func (p *Provider[T]) Data() []T { return p.data }

// State returns a copy of the current state.
func (p *Provider[T]) State() State { return p.state.clone() }

// Filtered returns every row passing the filters, sorted.
func (p *Provider[T]) Filtered() []T { return p.filtered }

// View returns the rows to display: the current page in client mode,
// all filtered rows in server mode.
func (p *Provider[T]) View() []T { return p.view }

// Total is the number of filtered rows.
func (p *Provider[T]) Total() int { return len(p.filtered) }

// PageCount is the number of client-side pages, at least 1.
func (p *Provider[T]) PageCount() int {
	n := (len(p.filtered) + p.state.PageSize - 1) / p.state.PageSize
	return max(n, 1)
}

// SetData replaces the raw rows. Rows are not part of the persisted
// state, so nothing is written.
func (p *Provider[T]) SetData(data []T) {
	p.data = data
	p.recompute()
}

// SetFilters replaces the filter rules.
func (p *Provider[T]) SetFilters(ctx context.Context, rules []FilterRule) error {
	p.state.Filters = slices.Clone(rules)
	return p.changed(ctx)
}

// SetSorts replaces the sort rules.
func (p *Provider[T]) SetSorts(ctx context.Context, rules []SortRule) error {
	p.state.Sorts = slices.Clone(rules)
	return p.changed(ctx)
}

// SetPage moves to page n (1-based).
func (p *Provider[T]) SetPage(ctx context.Context, n int) error {
	p.state.Page = max(n, 1)
	return p.changed(ctx)
}

// SetPageSize changes the rows per page. The page is left alone.
func (p *Provider[T]) SetPageSize(ctx context.Context, n int) error {
	if n < 1 {
		return fmt.Errorf("page size must be positive, got %d", n)
	}
	p.state.PageSize = n
	return p.changed(ctx)
}

// Update applies several changes with a single recompute.
func (p *Provider[T]) Update(ctx context.Context, fn func(*State)) error {
	fn(&p.state)
	p.state = p.state.normalize(p.cfg.DefaultPageSize)
	return p.changed(ctx)
}

// Apply persists the current state explicitly.
func (p *Provider[T]) Apply(ctx context.Context) error {
	return p.save(ctx)
}

// Reset clears filters and sorts, returns to page 1 and removes the
// persisted entry. The page size is kept. Resetting twice equals resetting
// once.
func (p *Provider[T]) Reset(ctx context.Context) error {
	p.state.Filters = nil
	p.state.Sorts = nil
	p.state.Page = 1
	p.recompute()

	if !p.persistent() {
		return nil
	}
	if err := p.cfg.Store.Clear(ctx, p.cfg.Key); err != nil {
		return fmt.Errorf("clear table %s: %w", p.cfg.Key, err)
	}
	return nil
}

func (p *Provider[T]) changed(ctx context.Context) error {
	p.recompute()
	return p.save(ctx)
}

func (p *Provider[T]) save(ctx context.Context) error {
	if !p.persistent() {
		return nil
	}
	if err := p.cfg.Store.Save(ctx, p.cfg.Key, p.state.clone()); err != nil {
		return fmt.Errorf("persist table %s: %w", p.cfg.Key, err)
	}
	return nil
}

func (p *Provider[T]) recompute() {
	rows := Filter(p.data, p.state.Filters)
	Sort(rows, p.state.Sorts)
	p.filtered = rows

	if p.cfg.Mode != PaginateClient {
		p.view = rows
		return
	}

	start := (p.state.Page - 1) * p.state.PageSize
	if start >= len(rows) {
		p.view = rows[:0]
		return
	}
	end := min(start+p.state.PageSize, len(rows))
	p.view = rows[start:end]
}

// StoreStates keeps table state in a store.Store, scoped to one dashboard
// session.
type StoreStates struct {
	store store.Store
	scope string
	ttl   time.Duration
}

// NewStoreStates persists state for the session scope with the given TTL.
func NewStoreStates(s store.Store, scope string, ttl time.Duration) *StoreStates {
	return &StoreStates{store: s, scope: scope, ttl: ttl}
}

func (s *StoreStates) key(k string) string {
	return store.Key("table", s.scope, k)
}

func (s *StoreStates) Load(ctx context.Context, key string) (State, bool, error) {
	st, err := store.GetJSON[State](ctx, s.store, s.key(key))
	if errors.Is(err, store.ErrNotFound) {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, err
	}
	return st, true, nil
}

func (s *StoreStates) Save(ctx context.Context, key string, st State) error {
	return store.SetJSON(ctx, s.store, s.key(key), st, s.ttl)
}

func (s *StoreStates) Clear(ctx context.Context, key string) error {
	return s.store.Delete(ctx, s.key(key))
}

// ClearAll removes every table state of the session scope.
func (s *StoreStates) ClearAll(ctx context.Context) error {
	return s.store.DeletePrefix(ctx, store.Key("table", s.scope, ""))
}
