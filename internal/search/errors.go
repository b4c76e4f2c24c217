package search

import "errors"

var (
	ErrUnsupportedBackend = errors.New("unsupported search backend")
	ErrUnexpectedStatus   = errors.New("unexpected status from search provider")
	ErrInvalidProxy       = errors.New("invalid proxy url")
)
