package server

import (
	"context"
	"errors"

	"github.com/agenthands/sift/internal/core/model"
	"github.com/agenthands/sift/internal/llm"
)

type MockBackend struct {
	Results []model.Result
	Err     error
}

func (m *MockBackend) Name() string { return "mock" }

func (m *MockBackend) Search(ctx context.Context, query string, maxResults int) ([]model.Result, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]model.Result(nil), m.Results...), nil
}

type MockEngine struct {
	Answer   string
	Embed    llm.EmbedderClient
	Closed   bool
	Provider string
	APIKey   string
}

func (m *MockEngine) GenerateQueries(ctx context.Context, query string, count int) ([]string, error) {
	if m.APIKey == "" {
		return nil, llm.ErrMissingCredential
	}
	return []string{query}, nil
}

func (m *MockEngine) AnswerFromTopResults(ctx context.Context, query string, results []model.Result, topN int) (string, error) {
	return m.Answer, nil
}

func (m *MockEngine) Embedder() llm.EmbedderClient { return m.Embed }

func (m *MockEngine) Close() error {
	m.Closed = true
	return nil
}

var errBackendDown = errors.New("backend down")
