package rerank

import (
	"context"
	"fmt"
	"sync"
)

type MockEmbedder struct {
	Vectors map[string][]float32
	Err     error
	// FailOn makes Embed fail only for this text.
	FailOn string

	mu    sync.Mutex
	Calls []string
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, text)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if m.FailOn != "" && text == m.FailOn {
		return nil, fmt.Errorf("embed failed for %q", text)
	}
	vec, ok := m.Vectors[text]
	if !ok {
		return nil, fmt.Errorf("no vector for %q", text)
	}
	return vec, nil
}
