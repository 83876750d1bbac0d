package domain

import "errors"

var (
	// ErrUnknownSource is returned when no adapter is registered for a source name
	ErrUnknownSource = errors.New("unknown scrape source")

	// ErrMissingAPIKey is returned when the classifier credential is not configured
	ErrMissingAPIKey = errors.New("classification API key not set")

	// ErrParseFailure is returned when no valid JSON can be recovered from a model reply
	ErrParseFailure = errors.New("could not parse classifier reply")

	// ErrEmptyReply is returned when the classifier response carries no content
	ErrEmptyReply = errors.New("no content in classifier response")

	// ErrCacheMiss is returned when a title has no cached classification
	ErrCacheMiss = errors.New("cache miss")
)
