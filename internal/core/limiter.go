package core

// limiter.go bounds the number of upstream mutations in flight.
//
// Every create, update and delete holds a slot for the duration of its API
// call. When all slots are taken a mutation waits up to maxWait and then
// fails with ErrTooManyMutations. Shutdown uses WaitForDrain so writes that
// were already sent can finish.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyMutations is returned when no mutation slot frees up within the
// wait time. Clients should retry after a short delay.
var ErrTooManyMutations = errors.New("too many concurrent changes, please try again later")

// DefaultMaxConcurrentMutations is the slot count of a limiter built with
// a non-positive maximum.
const DefaultMaxConcurrentMutations = 8

// DefaultMutationWait is how long a mutation waits for a slot by default.
const DefaultMutationWait = 10 * time.Second

// MutationLimiter is a counting semaphore over upstream writes.
type MutationLimiter struct {
	slots   chan struct{}
	maxWait time.Duration

	mu     sync.RWMutex
	active int
}

// NewMutationLimiter allows at most maxConcurrent simultaneous mutations.
func NewMutationLimiter(maxConcurrent int, maxWait time.Duration) *MutationLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentMutations
	}
	if maxWait <= 0 {
		maxWait = DefaultMutationWait
	}
	return &MutationLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting at most maxWait. The caller must Release
// it once the mutation has settled.
func (l *MutationLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.slots <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil
	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyMutations
	}
}

// Release returns a slot taken by Acquire.
func (l *MutationLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()
	<-l.slots
}

// Active is the number of mutations in flight.
func (l *MutationLimiter) Active() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// WaitForDrain blocks until no mutation is in flight or ctx is done.
func (l *MutationLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.Active() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// LimiterStatus is a snapshot of a MutationLimiter for the health check.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current slot usage.
func (l *MutationLimiter) Status() LimiterStatus {
	active := l.Active()
	return LimiterStatus{
		Active:        active,
		Available:     cap(l.slots) - len(l.slots),
		MaxConcurrent: cap(l.slots),
	}
}
