package web

import (
	"log/slog"
	"sync"
	"time"

	"github.com/JonMunkholm/admindash/internal/apiclient"
	"github.com/JonMunkholm/admindash/internal/core"
)

// fetcherRegistry keeps one list fetcher per session and view, so a new
// page request supersedes the one still loading for the same table.
// Fetchers unused for the idle timeout are closed by a sweeper.
type fetcherRegistry struct {
	mu      sync.Mutex
	entries map[fetcherKey]*fetcherEntry
	idle    time.Duration
	done    chan struct{}
	once    sync.Once
}

type fetcherKey struct {
	session string
	view    string
}

type fetcherEntry struct {
	fetcher  interface{ Close() }
	lastUsed time.Time
}

func newFetcherRegistry(idle time.Duration) *fetcherRegistry {
	reg := &fetcherRegistry{
		entries: make(map[fetcherKey]*fetcherEntry),
		idle:    idle,
		done:    make(chan struct{}),
	}
	if idle > 0 {
		go reg.sweepLoop()
	}
	return reg
}

// listFetcher returns the fetcher of view for rs, creating it on first use.
func listFetcher[T any](reg *fetcherRegistry, rs *requestSession, view string) *apiclient.Fetcher[core.Page[T]] {
	key := fetcherKey{session: rs.ID, view: view}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if e, ok := reg.entries[key]; ok {
		if f, ok := e.fetcher.(*apiclient.Fetcher[core.Page[T]]); ok {
			e.lastUsed = time.Now()
			return f
		}
		e.fetcher.Close()
	}

	f := core.NewListFetcher[T](rs.svc, apiclient.OnSettle(func(url string, err error) {
		if err != nil {
			slog.Warn("list fetch failed", "session", shortID(rs.ID), "view", view, "url", url, "error", err)
		}
	}))
	reg.entries[key] = &fetcherEntry{fetcher: f, lastUsed: time.Now()}
	return f
}

// DropSession closes every fetcher of the session.
func (reg *fetcherRegistry) DropSession(sessionID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for key, e := range reg.entries {
		if key.session == sessionID {
			e.fetcher.Close()
			delete(reg.entries, key)
		}
	}
}

// Len is the number of live fetchers.
func (reg *fetcherRegistry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.entries)
}

func (reg *fetcherRegistry) sweepLoop() {
	ticker := time.NewTicker(reg.idle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-reg.done:
			return
		case now := <-ticker.C:
			reg.sweep(now)
		}
	}
}

func (reg *fetcherRegistry) sweep(now time.Time) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for key, e := range reg.entries {
		if now.Sub(e.lastUsed) > reg.idle {
			e.fetcher.Close()
			delete(reg.entries, key)
		}
	}
}

// Close stops the sweeper and closes every fetcher.
func (reg *fetcherRegistry) Close() {
	reg.once.Do(func() { close(reg.done) })

	reg.mu.Lock()
	defer reg.mu.Unlock()
	for key, e := range reg.entries {
		e.fetcher.Close()
		delete(reg.entries, key)
	}
}
