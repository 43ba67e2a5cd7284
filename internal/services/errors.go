// Package services defines the business logic for recall curation, search,
// and the saved set. This file centralizes common service-level error values
// so that they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

var (
	// ErrInvalidRecallID is returned when a recall identifier is not a
	// positive integer.
	ErrInvalidRecallID = errors.New("recall id must be a positive integer")

	// ErrRefreshFailed wraps a fetch or curation failure during a refresh
	// attempt. The underlying cause is attached for errors.Is/As checks.
	ErrRefreshFailed = errors.New("refresh failed")
)
