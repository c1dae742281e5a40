// Package paths builds dashboard URLs. Record ids travel base64 encoded so
// ids containing slashes or other reserved characters survive routing.
package paths

import (
	"encoding/base64"
	"errors"

	"github.com/JonMunkholm/admindash/internal/core"
)

// ErrInvalidID reports a path segment that does not decode to an id.
var ErrInvalidID = errors.New("invalid record id")

// EncodeID encodes id for use as a path segment.
func EncodeID(id core.ID) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

// DecodeID reverses EncodeID. Empty and malformed segments are rejected.
func DecodeID(segment string) (core.ID, error) {
	if segment == "" {
		return "", ErrInvalidID
	}
	raw, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil || len(raw) == 0 {
		return "", ErrInvalidID
	}
	return core.ID(raw), nil
}

func User(id core.ID) string    { return "/users/" + EncodeID(id) }
func Subject(id core.ID) string { return "/subjects/" + EncodeID(id) }
func Task(id core.ID) string    { return "/tasks/" + EncodeID(id) }

// Record links an activity entry to its record, or returns "" when the
// resource has no detail page or the id is unknown.
func Record(resource string, id core.ID) string {
	if id == "" {
		return ""
	}
	switch resource {
	case "users":
		return User(id)
	case "subjects":
		return Subject(id)
	case "tasks":
		return Task(id)
	}
	return ""
}
