package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient connects on first use so that a missing key only fails the
// call that needs it.
type GeminiClient struct {
	apiKey         string
	model          string
	embeddingModel string

	mu     sync.Mutex
	client *genai.Client
}

func NewGeminiClient(apiKey string, model string, embeddingModel string) *GeminiClient {
	return &GeminiClient{
		apiKey:         apiKey,
		model:          model,
		embeddingModel: embeddingModel,
	}
}

func (c *GeminiClient) conn(ctx context.Context) (*genai.Client, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingCredential)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		return c.client, nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}
	c.client = client
	return client, nil
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	client, err := c.conn(ctx)
	if err != nil {
		return "", err
	}

	model := client.GenerativeModel(c.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		var b strings.Builder
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				b.WriteString(string(txt))
			}
		}
		if b.Len() > 0 {
			return strings.TrimSpace(b.String()), nil
		}
	}

	return "", fmt.Errorf("gemini: %w: no response candidates or content", ErrEmptyResponse)
}

func (c *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	client, err := c.conn(ctx)
	if err != nil {
		return nil, err
	}

	em := client.EmbeddingModel(c.embeddingModel)
	em.TaskType = genai.TaskTypeRetrievalQuery
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, err
	}
	if res.Embedding != nil {
		return res.Embedding.Values, nil
	}
	return nil, fmt.Errorf("gemini: %w: no embedding values", ErrEmptyResponse)
}

func (c *GeminiClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}
