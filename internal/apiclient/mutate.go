package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// MutateState is a snapshot of a Mutator.
type MutateState[T any] struct {
	Data    *T
	Loading bool
	Err     error
}

// Mutator issues POST, PUT, PATCH and DELETE requests. Concurrent calls
// are neither queued nor de-duplicated: they race, and the state reflects
// whichever finished last.
type Mutator[T any] struct {
	client *Client

	mu       sync.Mutex
	state    MutateState[T]
	inflight int
}

// NewMutator creates a mutator using c.
func NewMutator[T any](c *Client) *Mutator[T] {
	return &Mutator[T]{client: c}
}

// State returns a snapshot of the current state.
func (m *Mutator[T]) State() MutateState[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Mutate sends body as JSON to url. The error is both recorded in the
// state and returned. A 2xx response with an empty body yields the zero T.
func (m *Mutator[T]) Mutate(ctx context.Context, url, method string, body any, opts Options) (T, error) {
	var zero T

	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		err := fmt.Errorf("unsupported mutation method %q", method)
		m.finish(nil, err, false)
		return zero, err
	}

	m.mu.Lock()
	m.inflight++
	m.state.Loading = true
	m.state.Err = nil
	m.mu.Unlock()

	result, err := m.do(ctx, url, method, body, opts)
	m.finish(result, err, true)
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	return *result, nil
}

func (m *Mutator[T]) finish(result *T, err error, started bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if started {
		m.inflight--
	}
	m.state.Loading = m.inflight > 0
	if err != nil {
		m.state.Err = err
		return
	}
	m.state.Data = result
}

func (m *Mutator[T]) do(ctx context.Context, url, method string, body any, opts Options) (*T, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", method, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := m.client.NewRequest(ctx, method, url, reader, opts)
	if err != nil {
		return nil, err
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", method, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(resp, data)}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &ParseError{URL: url, Err: err}
	}
	return &out, nil
}

// errorMessage prefers the server's message, then its error field, then
// "HTTP/<status>: <status text>".
func errorMessage(resp *http.Response, body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return fmt.Sprintf("HTTP/%d: %s", resp.StatusCode, statusText(resp))
}
