package services

import "errors"

var (
	// ErrValidation marks a request that is missing or misusing fields.
	ErrValidation = errors.New("invalid request")
	// ErrNotFound marks a missing document or source.
	ErrNotFound = errors.New("not found")
	// ErrParse marks a model response that does not match the expected shape.
	ErrParse = errors.New("unparseable model response")
	// ErrConfig marks an invalid chunking or service configuration.
	ErrConfig = errors.New("invalid configuration")
)
