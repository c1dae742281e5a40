package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/admindash/internal/apiclient"
	"github.com/JonMunkholm/admindash/internal/logging"
)

// ErrNotFound reports that the API has no record for an id, either with a
// 404 or with an empty envelope.
var ErrNotFound = errors.New("record not found")

// SubjectOptionsPageSize bounds the subject choices offered by task forms.
var SubjectOptionsPageSize = 100

// Service provides the dashboard operations on the admin API.
//
// A Service built by NewService has no caller identity. Handlers derive a
// per-session copy with Session, which carries the session's bearer token,
// its cache scope and the actor recorded in the activity feed.
type Service struct {
	client   *apiclient.Client
	cache    *apiclient.QueryCache
	activity *Activity
	limiter  *MutationLimiter

	scope string
	actor string
}

// NewService creates a Service. cache and activity may be nil.
func NewService(client *apiclient.Client, cache *apiclient.QueryCache, activity *Activity) *Service {
	return &Service{client: client, cache: cache, activity: activity}
}

// WithLimiter returns a copy of s whose mutations hold a slot of l. Session
// copies share the limiter.
func (s *Service) WithLimiter(l *MutationLimiter) *Service {
	cp := *s
	cp.limiter = l
	return &cp
}

// Session returns a copy of s bound to one dashboard session.
func (s *Service) Session(scope string, token apiclient.TokenSource, actor string) *Service {
	cp := *s
	cp.client = s.client.WithToken(token)
	cp.scope = scope
	cp.actor = actor
	return &cp
}

// Client returns the API client requests are sent with.
func (s *Service) Client() *apiclient.Client { return s.client }

// Cache returns the query cache, or nil.
func (s *Service) Cache() *apiclient.QueryCache { return s.cache }

// Scope returns the cache scope of the bound session.
func (s *Service) Scope() string { return s.scope }

// Activity returns the activity feed, or nil.
func (s *Service) Activity() *Activity { return s.activity }

// Limiter returns the mutation limiter, or nil.
func (s *Service) Limiter() *MutationLimiter { return s.limiter }

// NewListFetcher returns a fetcher for one paginated list view of the bound
// session. Responses are read through the query cache.
func NewListFetcher[T any](s *Service, opts ...apiclient.FetcherOption) *apiclient.Fetcher[Page[T]] {
	if s.cache != nil {
		opts = append([]apiclient.FetcherOption{apiclient.WithCache(s.cache, s.scope)}, opts...)
	}
	return apiclient.NewFetcher[Page[T]](s.client, opts...)
}

// getRaw loads path through the cache when there is one.
func (s *Service) getRaw(ctx context.Context, path string) ([]byte, error) {
	fetch := func(ctx context.Context) ([]byte, error) {
		return s.client.GetRaw(ctx, path, apiclient.Options{})
	}

	var (
		data []byte
		err  error
	)
	if s.cache != nil {
		data, err = s.cache.Load(ctx, s.scope, path, fetch)
	} else {
		data, err = fetch(ctx)
	}
	if err != nil {
		if apiclient.IsStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("get %s: %w", path, ErrNotFound)
		}
		return nil, err
	}
	return data, nil
}

// getJSON issues a GET and decodes the response into a T.
func getJSON[T any](ctx context.Context, s *Service, path string) (T, error) {
	var out T
	data, err := s.getRaw(ctx, path)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, &apiclient.ParseError{URL: path, Err: err}
	}
	return out, nil
}

// mutate sends a mutation and, on success, drops cached reads of the
// affected resources. Errors are returned as the Mutator produced them so
// server messages reach the caller intact.
func mutate[T any](ctx context.Context, s *Service, path, method string, body any, invalidate ...string) (T, error) {
	if s.limiter != nil {
		if err := s.limiter.Acquire(ctx); err != nil {
			var zero T
			logging.FromContext(ctx).Warn("api mutation not sent",
				"method", method,
				"path", path,
				"active", s.limiter.Active(),
				"error", err,
			)
			return zero, err
		}
		defer s.limiter.Release()
	}

	m := apiclient.NewMutator[T](s.client)
	out, err := m.Mutate(ctx, path, method, body, apiclient.Options{})
	if err != nil {
		logging.FromContext(ctx).Warn("api mutation failed",
			"method", method,
			"path", path,
			"error", err,
		)
		return out, err
	}

	if len(invalidate) == 0 {
		invalidate = []string{apiclient.Resource(path)}
	}
	s.invalidate(ctx, invalidate...)
	return out, nil
}

// prefetch warms the cache for path in the background.
func (s *Service) prefetch(path string) {
	if s.cache == nil {
		return
	}
	client := s.client
	s.cache.Prefetch(s.scope, path, func(ctx context.Context) ([]byte, error) {
		return client.GetRaw(ctx, path, apiclient.Options{})
	})
}

func (s *Service) invalidate(ctx context.Context, resources ...string) {
	if s.cache == nil {
		return
	}
	for _, r := range resources {
		if err := s.cache.Invalidate(ctx, s.scope, r); err != nil {
			logging.FromContext(ctx).Warn("cache invalidation failed", "resource", r, "error", err)
		}
	}
}

// record adds e to the activity feed. Feed failures are logged, never
// returned: the mutation itself already succeeded.
func (s *Service) record(ctx context.Context, e ActivityEntry) {
	if s.activity == nil {
		return
	}
	e.Actor = s.actor
	if err := s.activity.Record(ctx, e); err != nil {
		logging.FromContext(ctx).Warn("activity record failed", "action", e.Action, "error", err)
	}
}
