package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// FetchState is a snapshot of a Fetcher. Data keeps the last successful
// response while a newer request is loading; DataURL is the URL it was
// loaded from, which differs from URL once another request has started.
type FetchState[T any] struct {
	Data    *T
	DataURL string
	Loading bool
	Err     error
	URL     string
}

// DataFor returns the last successful response of url, or nil when Data
// belongs to another request.
func (s FetchState[T]) DataFor(url string) *T {
	if s.DataURL != url {
		return nil
	}
	return s.Data
}

type fetcherConfig struct {
	cache    *QueryCache
	scope    string
	onSettle func(url string, err error)
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*fetcherConfig)

// WithCache reads through q under the given session scope.
func WithCache(q *QueryCache, scope string) FetcherOption {
	return func(c *fetcherConfig) {
		c.cache = q
		c.scope = scope
	}
}

// OnSettle registers fn to run after each request that completes, with
// the request URL and its error. Superseded and cancelled requests never
// settle.
func OnSettle(fn func(url string, err error)) FetcherOption {
	return func(c *fetcherConfig) { c.onSettle = fn }
}

// Fetcher tracks the latest GET for one consumer. Loading a new URL or new
// options cancels the request in flight; a cancelled request never
// touches the state.
type Fetcher[T any] struct {
	client *Client
	cfg    fetcherConfig

	mu     sync.Mutex
	state  FetchState[T]
	key    string
	url    string
	opts   Options
	gen    uint64
	reqCtx context.Context
	cancel context.CancelFunc
	done   chan struct{}
	closed bool
}

// NewFetcher creates an idle fetcher.
func NewFetcher[T any](c *Client, opts ...FetcherOption) *Fetcher[T] {
	var cfg fetcherConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	done := make(chan struct{})
	close(done)
	return &Fetcher[T]{client: c, cfg: cfg, done: done}
}

// State returns a snapshot of the current state.
func (f *Fetcher[T]) State() FetchState[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Load starts a request for url unless the same url and options are
// already loaded or loading under a live context. It does not wait for the
// response.
func (f *Fetcher[T]) Load(ctx context.Context, url string, opts Options) {
	key := requestKey(url, opts)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	if key == f.key && f.reqCtx != nil && f.reqCtx.Err() == nil {
		return
	}
	f.startLocked(ctx, url, opts, key)
}

// Fetch is Load followed by Wait.
func (f *Fetcher[T]) Fetch(ctx context.Context, url string, opts Options) (FetchState[T], error) {
	f.Load(ctx, url, opts)
	if err := f.Wait(ctx); err != nil {
		return f.State(), err
	}
	return f.State(), nil
}

// Refetch re-issues the current request and waits for it. Loading is true
// until it settles.
func (f *Fetcher[T]) Refetch(ctx context.Context) error {
	f.mu.Lock()
	if f.closed || f.url == "" {
		f.mu.Unlock()
		return nil
	}
	f.startLocked(ctx, f.url, f.opts, requestKey(f.url, f.opts))
	f.mu.Unlock()

	return f.Wait(ctx)
}

// Wait blocks until the most recent request settles or ctx is done. If the
// request is superseded while waiting, Wait follows the newer one.
func (f *Fetcher[T]) Wait(ctx context.Context) error {
	for {
		f.mu.Lock()
		done := f.done
		f.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
		}

		f.mu.Lock()
		latest := f.done == done
		f.mu.Unlock()
		if latest {
			return nil
		}
	}
}

// Close cancels the request in flight. Later loads are ignored.
func (f *Fetcher[T]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	f.gen++
	if f.cancel != nil {
		f.cancel()
	}
	f.state.Loading = false
}

func (f *Fetcher[T]) startLocked(ctx context.Context, url string, opts Options, key string) {
	if f.cancel != nil {
		if f.state.Loading {
			f.client.metrics.Superseded()
		}
		f.cancel()
	}

	f.gen++
	reqCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	f.key, f.url, f.opts = key, url, opts
	f.reqCtx, f.cancel, f.done = reqCtx, cancel, done
	f.state.Loading = true
	f.state.URL = url

	go f.run(reqCtx, f.gen, url, opts, done)
}

func (f *Fetcher[T]) run(ctx context.Context, gen uint64, url string, opts Options, done chan struct{}) {
	defer close(done)

	var result *T
	data, err := f.get(ctx, url, opts)
	if err == nil {
		var v T
		if uerr := json.Unmarshal(data, &v); uerr != nil {
			err = &ParseError{URL: url, Err: uerr}
		} else {
			result = &v
		}
	}

	f.mu.Lock()
	if gen != f.gen {
		f.mu.Unlock()
		return
	}
	f.state.Loading = false
	if errors.Is(err, context.Canceled) || ctx.Err() != nil {
		// Aborted: leave Err alone so the next Load retries this key.
		f.mu.Unlock()
		return
	}
	if err != nil {
		f.state.Err = err
	} else {
		f.state.Data = result
		f.state.DataURL = url
		f.state.Err = nil
	}
	settle := f.cfg.onSettle
	f.mu.Unlock()

	if settle != nil {
		settle(url, err)
	}
}

func (f *Fetcher[T]) get(ctx context.Context, url string, opts Options) ([]byte, error) {
	if f.cfg.cache == nil {
		return f.client.GetRaw(ctx, url, opts)
	}
	return f.cfg.cache.Load(ctx, f.cfg.scope, url, func(ctx context.Context) ([]byte, error) {
		return f.client.GetRaw(ctx, url, opts)
	})
}

// requestKey identifies a request by URL and serialized options.
func requestKey(url string, opts Options) string {
	b, _ := json.Marshal(opts)
	return url + "\n" + string(b)
}
