package rerank

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/agenthands/sift/internal/core/model"
	"golang.org/x/sync/errgroup"
)

const cosineEpsilon = 1e-8

var ErrDimensionMismatch = errors.New("embedding dimensions differ")

// EmbeddingReranker scores results by cosine similarity between the query
// embedding and the embedding of each result's title and snippet.
type EmbeddingReranker struct {
	Embedder Embedder
	// Concurrency bounds in-flight candidate embedding calls. Values below 1 mean sequential.
	Concurrency int
}

func NewEmbeddingReranker(embedder Embedder, concurrency int) *EmbeddingReranker {
	return &EmbeddingReranker{
		Embedder:    embedder,
		Concurrency: concurrency,
	}
}

func (r *EmbeddingReranker) Name() string { return StrategyEmbedding }

func (r *EmbeddingReranker) Rerank(ctx context.Context, results []model.Result, query string) ([]model.Result, error) {
	if len(results) == 0 {
		return results, nil
	}

	queryVec, err := r.Embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	limit := r.Concurrency
	if limit < 1 {
		limit = 1
	}

	scores := make([]float64, len(results))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i := range results {
		text := results[i].Text()
		g.Go(func() error {
			vec, err := r.Embedder.Embed(gctx, text)
			if err != nil {
				return fmt.Errorf("failed to embed result %d: %w", i, err)
			}
			sim, err := CosineSimilarity(queryVec, vec)
			if err != nil {
				return fmt.Errorf("result %d: %w", i, err)
			}
			scores[i] = sim
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range results {
		results[i].SetScore(scores[i])
	}
	sortByScore(results)
	return results, nil
}

// CosineSimilarity returns dot(a, b) / (|a|*|b| + 1e-8), so all-zero vectors score 0.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	return dot / (math.Sqrt(normA)*math.Sqrt(normB) + cosineEpsilon), nil
}
