package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agenthands/sift/internal/config"
	"github.com/agenthands/sift/internal/core/model"
	"github.com/sirupsen/logrus"
)

// Backend executes a single query against a web search provider.
type Backend interface {
	Search(ctx context.Context, query string, maxResults int) ([]model.Result, error)
	Name() string
}

// Options are per-request transport settings.
type Options struct {
	Proxy   string
	Timeout time.Duration
}

// Configurable backends can hand out a copy bound to per-request transport options.
type Configurable interface {
	WithOptions(opts Options) (Backend, error)
}

func NewBackend(cfg config.SearchConfig, log *logrus.Entry) (Backend, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "duckduckgo", "ddg":
		return NewDuckDuckGo(cfg, log)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBackend, cfg.Backend)
	}
}
