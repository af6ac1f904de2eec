package domain

import "errors"

var (
	// ErrMissingVenue is returned when a vote arrives without a venue ID.
	ErrMissingVenue = errors.New("missing venue id")

	// ErrMissingStatus is returned when a vote arrives without a status label.
	ErrMissingStatus = errors.New("missing status")

	// ErrUnknownStatus is returned for status labels other than
	// empty, moderate and busy.
	ErrUnknownStatus = errors.New("unknown status")

	// ErrStatusNotFound signals that a venue has no published status yet.
	// Callers substitute the moderate/zero-votes default.
	ErrStatusNotFound = errors.New("venue status not found")
)
