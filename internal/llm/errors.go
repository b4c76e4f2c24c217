package llm

import "errors"

var (
	ErrUnsupportedProvider   = errors.New("unsupported llm provider")
	ErrMissingCredential     = errors.New("missing api key")
	ErrEmbeddingsUnsupported = errors.New("engine does not support embeddings")
	ErrEmptyResponse         = errors.New("empty response from llm")
	ErrNoQueries             = errors.New("no queries in expansion response")
)
