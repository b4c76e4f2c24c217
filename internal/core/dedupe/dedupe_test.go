package dedupe

import (
	"testing"

	"github.com/agenthands/sift/internal/core/model"
	"github.com/stretchr/testify/assert"
)

func TestDeduplicate_FirstSeenWins(t *testing.T) {
	results := []model.Result{
		{Title: "first", URL: "https://a.com"},
		{Title: "b", URL: "https://b.com"},
		{Title: "second", URL: "https://a.com"},
	}

	deduped := Deduplicate(results)

	assert.Len(t, deduped, 2)
	assert.Equal(t, "first", deduped[0].Title)
	assert.Equal(t, "b", deduped[1].Title)
}

func TestDeduplicate_EmptyURLsAlwaysKept(t *testing.T) {
	results := []model.Result{
		{Title: "x"},
		{Title: "y"},
		{Title: "a", URL: "https://a.com"},
		{Title: "z"},
	}

	deduped := Deduplicate(results)

	assert.Len(t, deduped, 4)
	assert.Equal(t, []string{"x", "y", "a", "z"}, titles(deduped))
}

func TestDeduplicate_NoNormalization(t *testing.T) {
	// scheme, trailing slash and case differences are distinct identities
	results := []model.Result{
		{URL: "https://a.com"},
		{URL: "https://a.com/"},
		{URL: "http://a.com"},
		{URL: "https://A.com"},
	}

	assert.Len(t, Deduplicate(results), 4)
}

func TestDeduplicate_NoSharedNonEmptyURL(t *testing.T) {
	urls := []string{"u1", "u2", "u1", "", "u3", "u2", "", "u1"}
	var results []model.Result
	for _, u := range urls {
		results = append(results, model.Result{URL: u})
	}

	deduped := Deduplicate(results)

	seen := map[string]int{}
	for _, r := range deduped {
		if r.URL != "" {
			seen[r.URL]++
		}
	}
	for u, n := range seen {
		assert.Equal(t, 1, n, "url %s kept %d times", u, n)
	}
	assert.Equal(t, []string{"u1", "u2", "", "u3", ""}, urlsOf(deduped))
}

func TestDeduplicate_Empty(t *testing.T) {
	assert.Empty(t, Deduplicate(nil))
}

func titles(rs []model.Result) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Title
	}
	return out
}

func urlsOf(rs []model.Result) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.URL
	}
	return out
}
