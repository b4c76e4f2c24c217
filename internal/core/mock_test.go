package core

import (
	"context"
	"sync"

	"github.com/agenthands/sift/internal/core/model"
	"github.com/agenthands/sift/internal/llm"
)

type MockBackend struct {
	Results map[string][]model.Result
	Err     map[string]error

	mu      sync.Mutex
	Queries []string
}

func (m *MockBackend) Name() string { return "mock" }

func (m *MockBackend) Search(ctx context.Context, query string, maxResults int) ([]model.Result, error) {
	m.mu.Lock()
	m.Queries = append(m.Queries, query)
	m.mu.Unlock()

	if err := m.Err[query]; err != nil {
		return nil, err
	}
	res := m.Results[query]
	if maxResults > 0 && len(res) > maxResults {
		res = res[:maxResults]
	}
	return append([]model.Result(nil), res...), nil
}

func (m *MockBackend) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Queries)
}

type MockEmbedder struct {
	Vectors map[string][]float32
	Err     error
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if v, ok := m.Vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

type MockEngine struct {
	Queries    []string
	ExpandErr  error
	Answer     string
	AnswerErr  error
	Embed      llm.EmbedderClient
	ExpandSeen int
	Answered   int
	AnswerTopN int
}

func (m *MockEngine) GenerateQueries(ctx context.Context, query string, count int) ([]string, error) {
	m.ExpandSeen = count
	if m.ExpandErr != nil {
		return nil, m.ExpandErr
	}
	return m.Queries, nil
}

func (m *MockEngine) AnswerFromTopResults(ctx context.Context, query string, results []model.Result, topN int) (string, error) {
	m.Answered++
	m.AnswerTopN = topN
	if m.AnswerErr != nil {
		return "", m.AnswerErr
	}
	return m.Answer, nil
}

func (m *MockEngine) Embedder() llm.EmbedderClient {
	return m.Embed
}
