// Package services defines the business logic for analytics ingestion,
// reporting, presence tracking, and cached upstream aggregations. This file
// centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

var (
	// ErrMissingField is returned when an ingestion payload lacks one of
	// the required fields. Wrapped with the field name, e.g.
	// fmt.Errorf("%w: visitorId", ErrMissingField).
	ErrMissingField = errors.New("missing required field")

	// ErrUpstream is returned when an upstream API producer fails or
	// responds with an unexpected shape.
	ErrUpstream = errors.New("upstream request failed")
)
