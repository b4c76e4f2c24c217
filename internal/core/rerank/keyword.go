package rerank

import (
	"context"
	"regexp"
	"strings"

	"github.com/agenthands/sift/internal/core/model"
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// KeywordReranker scores each result by how many distinct query words it shares.
type KeywordReranker struct{}

func NewKeywordReranker() *KeywordReranker {
	return &KeywordReranker{}
}

func (r *KeywordReranker) Name() string { return StrategyKeyword }

func (r *KeywordReranker) Rerank(_ context.Context, results []model.Result, query string) ([]model.Result, error) {
	queryWords := tokenize(query)
	for i := range results {
		results[i].SetScore(float64(overlap(queryWords, tokenize(results[i].Text()))))
	}
	sortByScore(results)
	return results, nil
}

func tokenize(text string) map[string]struct{} {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func overlap(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}
