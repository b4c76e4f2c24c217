package llm

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/agenthands/sift/internal/config"
	"github.com/agenthands/sift/internal/core/model"
	"github.com/sirupsen/logrus"
)

// Engine bundles what the search pipeline asks of a language model: query
// expansion, answer synthesis and, when the provider has them, embeddings.
// An Engine holds one request's credentials and is not shared across requests.
type Engine struct {
	name     string
	llm      LLMClient
	embedder EmbedderClient
	prompts  config.PromptsConfig
	log      *logrus.Entry
}

func NewEngine(name string, llmClient LLMClient, embedder EmbedderClient, prompts config.PromptsConfig, log *logrus.Entry) *Engine {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Engine{
		name:     name,
		llm:      llmClient,
		embedder: embedder,
		prompts:  prompts,
		log:      log.WithField("engine", name),
	}
}

// NewEngineForProvider resolves the provider's clients with the given key.
// An empty key is accepted here and reported when a call needs it.
func NewEngineForProvider(provider, apiKey string, cfg *config.Config, log *logrus.Entry) (*Engine, error) {
	llmClient, embedder, err := NewClient(provider, apiKey, cfg.LLM)
	if err != nil {
		return nil, err
	}
	return NewEngine(provider, llmClient, embedder, cfg.Prompts, log), nil
}

func (e *Engine) Name() string { return e.name }

// Embedder returns nil when the engine cannot embed text. Otherwise the
// returned client embeds through GetEmbedding.
func (e *Engine) Embedder() EmbedderClient {
	if e.embedder == nil {
		return nil
	}
	return engineEmbedder{e}
}

type engineEmbedder struct{ e *Engine }

func (x engineEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return x.e.GetEmbedding(ctx, text)
}

func (e *Engine) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if e.embedder == nil {
		return nil, fmt.Errorf("%s: %w", e.name, ErrEmbeddingsUnsupported)
	}
	vec, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to embed: %w", e.name, err)
	}
	return vec, nil
}

func (e *Engine) GenerateAnswer(ctx context.Context, prompt string) (string, error) {
	return e.llm.Generate(ctx, prompt)
}

// AnswerFromTopResults asks the model for a cited answer grounded in the first
// topN results. Callers pass results already in final rank order.
func (e *Engine) AnswerFromTopResults(ctx context.Context, query string, results []model.Result, topN int) (string, error) {
	prompt := BuildAnswerPrompt(e.prompts.Answer, query, results, topN)

	answer, err := e.GenerateAnswer(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

func (e *Engine) Close() error {
	if c, ok := e.llm.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
