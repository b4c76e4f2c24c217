package fanout

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agenthands/sift/internal/core/model"
)

type MockBackend struct {
	Results map[string][]model.Result
	Fail    map[string]error
	Panic   string
	Delay   time.Duration

	mu       sync.Mutex
	Queries  []string
	inFlight atomic.Int32
	MaxSeen  atomic.Int32
}

func (m *MockBackend) Name() string { return "mock" }

func (m *MockBackend) Search(ctx context.Context, query string, maxResults int) ([]model.Result, error) {
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		seen := m.MaxSeen.Load()
		if n <= seen || m.MaxSeen.CompareAndSwap(seen, n) {
			break
		}
	}

	m.mu.Lock()
	m.Queries = append(m.Queries, query)
	m.mu.Unlock()

	if m.Delay > 0 {
		time.Sleep(m.Delay)
	}
	if query == m.Panic && m.Panic != "" {
		panic("boom")
	}
	if err, ok := m.Fail[query]; ok {
		return nil, err
	}
	res, ok := m.Results[query]
	if !ok {
		return nil, fmt.Errorf("unexpected query %q", query)
	}
	if maxResults > 0 && len(res) > maxResults {
		res = res[:maxResults]
	}
	return append([]model.Result(nil), res...), nil
}
