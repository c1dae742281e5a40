// Package core provides the dashboard's domain logic on top of the admin API.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// Typed errors are matched first: API status errors, parse failures, form
// validation and not-found. Anything else falls through to case-insensitive
// pattern matching on the error text.
//
// # API Errors (API001-API099)
//
//	API001 - Not found: The record no longer exists
//	         Action: Return to the list and refresh
//	         Matches: ErrNotFound, HTTP 404
//
//	API002 - Rejected: The API refused the change (server message shown)
//	         Action: Review the values and try again
//	         Matches: *apiclient.APIError with a 4xx status
//
//	API003 - Unavailable: The admin API failed to process the request
//	         Action: Please try again in a few moments
//	         Matches: HTTP 5xx
//
//	API004 - Unreadable response: The API returned data that could not be read
//	         Action: Please try again or contact support
//	         Matches: *apiclient.ParseError
//
//	API005 - Request failed: The API returned an unexpected status
//	         Action: Please try again
//	         Matches: any other *apiclient.RequestError
//
// # Authentication Errors (AUTH001-AUTH099)
//
//	AUTH001 - Not authorized: The API token was rejected
//	          Action: Sign in again or check the configured token
//	          Matches: HTTP 401
//
//	AUTH002 - Forbidden: This account cannot perform the action
//	          Action: Ask an administrator for access
//	          Matches: HTTP 403
//
//	AUTH003 - Invalid credentials: Email or password is incorrect
//	          Action: Check your email and password
//	          Patterns: "invalid email or password"
//
//	AUTH004 - Session expired: The dashboard session ended
//	          Action: Please sign in again
//	          Patterns: "session not found", "session expired"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid form: One or more fields need attention
//	         Action: Correct the highlighted fields
//	         Matches: ValidationErrors
//
//	VAL002 - Invalid link: The record id in the address is malformed
//	         Action: Open the record from its list
//	         Patterns: "invalid record id"
//
// # Network Errors (NET001-NET099)
//
//	NET001 - Connection refused: Unable to reach the admin API
//	NET002 - Connection reset: The connection to the API was interrupted
//	NET003 - Unknown host: The API address could not be resolved
//	NET004 - Timeout: The API took too long to respond
//	NET005 - Cancelled: The request was cancelled
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit", "too many requests"
//
//	RATE002 - Busy: Too many changes are being saved right now
//	          Action: Wait a few seconds and submit again
//	          Matches: ErrTooManyMutations
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches:
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns should be
// defined before general ones.
package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/admindash/internal/apiclient"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgNotFound = UserMessage{
		Message: "The record no longer exists",
		Action:  "Return to the list and refresh",
		Code:    "API001",
	}
	msgUnavailable = UserMessage{
		Message: "The admin API failed to process the request",
		Action:  "Please try again in a few moments",
		Code:    "API003",
	}
	msgUnreadable = UserMessage{
		Message: "The API returned data that could not be read",
		Action:  "Please try again or contact support",
		Code:    "API004",
	}
	msgUnauthorized = UserMessage{
		Message: "The API token was rejected",
		Action:  "Sign in again or check the configured token",
		Code:    "AUTH001",
	}
	msgForbidden = UserMessage{
		Message: "This account cannot perform the action",
		Action:  "Ask an administrator for access",
		Code:    "AUTH002",
	}
	msgInvalidForm = UserMessage{
		Message: "One or more fields need attention",
		Action:  "Correct the highlighted fields",
		Code:    "VAL001",
	}
	msgRateLimited = UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}
	msgBusy = UserMessage{
		Message: "Too many changes are being saved right now",
		Action:  "Wait a few seconds and submit again",
		Code:    "RATE002",
	}
)

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Authentication (AUTH003-AUTH004)
	// =========================================================================
	{
		pattern: "invalid email or password",
		msg: UserMessage{
			Message: "Email or password is incorrect",
			Action:  "Check your email and password",
			Code:    "AUTH003",
		},
	},
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "Your session has ended",
			Action:  "Please sign in again",
			Code:    "AUTH004",
		},
	},
	{
		pattern: "session expired",
		msg: UserMessage{
			Message: "Your session has ended",
			Action:  "Please sign in again",
			Code:    "AUTH004",
		},
	},

	// =========================================================================
	// Validation (VAL002)
	// =========================================================================
	{
		pattern: "invalid record id",
		msg: UserMessage{
			Message: "The record id in the address is malformed",
			Action:  "Open the record from its list",
			Code:    "VAL002",
		},
	},

	// =========================================================================
	// Network (NET001-NET005)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to reach the admin API",
			Action:  "Please try again in a few moments",
			Code:    "NET001",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "The connection to the API was interrupted",
			Action:  "Please try again",
			Code:    "NET002",
		},
	},
	{
		pattern: "no such host",
		msg: UserMessage{
			Message: "The API address could not be resolved",
			Action:  "Check the configured API URL",
			Code:    "NET003",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The API took too long to respond",
			Action:  "Please try again",
			Code:    "NET004",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "The API took too long to respond",
			Action:  "Please try again",
			Code:    "NET004",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The request was cancelled",
			Action:  "Please try again",
			Code:    "NET005",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{pattern: "rate limit", msg: msgRateLimited},
	{pattern: "too many requests", msg: msgRateLimited},
}

// defaultMessage is returned when no pattern matches (ERR000).
// Support staff should check application logs for the original technical
// error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Typed errors are checked first, then the known patterns
// (case-insensitive). If nothing matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	err := &apiclient.APIError{Status: 422, Message: "Invalid role"}
//	msg := MapError(err)
//	// msg.Code == "API002"
//	// msg.Message == "Invalid role"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	if msg, ok := mapTyped(err); ok {
		return msg
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

func mapTyped(err error) (UserMessage, bool) {
	if errors.Is(err, ErrNotFound) {
		return msgNotFound, true
	}
	if errors.Is(err, ErrTooManyMutations) {
		return msgBusy, true
	}
	if _, ok := AsValidationErrors(err); ok {
		return msgInvalidForm, true
	}

	var parseErr *apiclient.ParseError
	if errors.As(err, &parseErr) {
		return msgUnreadable, true
	}

	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		if msg, ok := statusMessage(apiErr.Status); ok {
			return msg, true
		}
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return UserMessage{
				Message: apiErr.Message,
				Action:  "Review the values and try again",
				Code:    "API002",
			}, true
		}
		return msgUnavailable, true
	}

	var reqErr *apiclient.RequestError
	if errors.As(err, &reqErr) {
		if msg, ok := statusMessage(reqErr.Status); ok {
			return msg, true
		}
		if reqErr.Status >= 500 {
			return msgUnavailable, true
		}
		return UserMessage{
			Message: fmt.Sprintf("The API answered %s", reqErr.StatusText),
			Action:  "Please try again",
			Code:    "API005",
		}, true
	}

	return UserMessage{}, false
}

// statusMessage covers the statuses whose meaning does not depend on the
// response body.
func statusMessage(status int) (UserMessage, bool) {
	switch status {
	case http.StatusNotFound:
		return msgNotFound, true
	case http.StatusUnauthorized:
		return msgUnauthorized, true
	case http.StatusForbidden:
		return msgForbidden, true
	case http.StatusTooManyRequests:
		return msgRateLimited, true
	}
	return UserMessage{}, false
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
//
// Example output: "The record no longer exists (Code: API001). Return to the list and refresh"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
// Returns true if the error matches a specific pattern (not the generic ERR000 fallback).
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging while providing a clean message for users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a user-friendly message.
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
