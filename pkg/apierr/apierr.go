// Package apierr carries the sentinel errors the Query Coordinator maps to
// HTTP status codes (spec.md §7), classified via errors.Is at the HTTP
// boundary.
package apierr

import "errors"

// ErrInvalidInput is returned when a request fails shape or range
// validation before any graph lookup happens.
var ErrInvalidInput = errors.New("invalid input")

// ErrNotFound is returned when a requested year has no graph or decay
// artifact loaded.
var ErrNotFound = errors.New("artifact not found")

// ErrTransient is returned when a request could not complete due to a
// condition expected to clear on retry, such as the request's context
// being cancelled while its origins are dispatched.
var ErrTransient = errors.New("transient failure")

// Kind classifies an error for HTTP status mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindNotFound
	KindTransient
)

// ClassifyKind maps err to a Kind via errors.Is against the sentinels
// above, defaulting to KindInternal for anything unrecognized.
func ClassifyKind(err error) Kind {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrTransient):
		return KindTransient
	default:
		return KindInternal
	}
}
