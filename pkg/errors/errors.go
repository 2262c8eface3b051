package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure within a crawl or download run.
type Kind string

const (
	// KindNavigation covers page loads that failed or timed out; isolated to one result page.
	KindNavigation Kind = "navigation"
	// KindChallenge marks an anti-automation challenge; a blocking state, not a failure.
	KindChallenge Kind = "challenge"
	// KindRequest covers transport errors and non-success HTTP statuses for one URL.
	KindRequest Kind = "request"
	// KindLocal covers filesystem and decoding failures for one URL.
	KindLocal Kind = "local"
	// KindInput marks a missing or empty URL list; fatal to the invocation.
	KindInput Kind = "input"
)

// Error attaches a Kind to an underlying failure so callers can
// bucket it into the run statistics.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a categorized error without a cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap categorizes an existing error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the Kind from an error chain. Uncategorized errors
// count as local failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindLocal
}

// IsFatal reports whether the error should halt the run before any
// work begins. Only a missing or empty input source qualifies.
func IsFatal(err error) bool {
	return KindOf(err) == KindInput
}
