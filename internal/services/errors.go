package services

import "errors"

var (
	// ErrInvalidQuery marks query parameters that cannot be defaulted.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrPersistence marks store failures that abort a search run.
	ErrPersistence = errors.New("persistence failure")
)
