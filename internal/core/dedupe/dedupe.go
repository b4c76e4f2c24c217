package dedupe

import (
	"github.com/agenthands/sift/internal/core/model"
)

// Deduplicate keeps the first record seen for every URL, in input order.
// URLs are compared as exact strings; records without a URL are always kept.
func Deduplicate(results []model.Result) []model.Result {
	seen := make(map[string]struct{}, len(results))
	deduped := make([]model.Result, 0, len(results))

	for _, r := range results {
		if r.URL == "" {
			deduped = append(deduped, r)
			continue
		}
		if _, ok := seen[r.URL]; ok {
			continue
		}
		seen[r.URL] = struct{}{}
		deduped = append(deduped, r)
	}

	return deduped
}
