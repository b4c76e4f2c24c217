package rerank

import (
	"context"
	"sort"

	"github.com/agenthands/sift/internal/core/model"
)

const (
	StrategyKeyword   = "keyword"
	StrategyEmbedding = "embedding"
)

// Reranker scores results against the user query and returns them sorted by
// relevancy score, highest first. Scores are attached to the input records.
type Reranker interface {
	Rerank(ctx context.Context, results []model.Result, query string) ([]model.Result, error)
	Name() string
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// sortByScore orders results by score descending, keeping encounter order on ties.
func sortByScore(results []model.Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score() > results[j].Score()
	})
}
