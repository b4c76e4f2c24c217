package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/agenthands/sift/internal/core/common"
)

const DefaultQueryCount = 3

const defaultExpansionPrompt = `Given the user query: '%s', generate %d different but related search queries that would help gather comprehensive information on the topic.
Return only a JSON object of the form {"queries": ["first query", "second query"]}.`

type expansionResult struct {
	Queries []string `json:"queries"`
}

var listMarker = regexp.MustCompile(`^(?:[-*•]+|\d+[.)]|\(\d+\))\s*`)

// GenerateQueries asks the model for up to count related search queries.
func (e *Engine) GenerateQueries(ctx context.Context, query string, count int) ([]string, error) {
	if count <= 0 {
		count = DefaultQueryCount
	}

	template := e.prompts.Expansion
	if template == "" {
		template = defaultExpansionPrompt
	}

	response, err := e.llm.Generate(ctx, fmt.Sprintf(template, query, count))
	if err != nil {
		return nil, fmt.Errorf("failed to generate queries: %w", err)
	}

	queries := ParseQueries(response, count)
	if len(queries) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoQueries, response)
	}

	e.log.WithField("queries", queries).Debug("expanded query")
	return queries, nil
}

// ParseQueries reads queries from a JSON object, a JSON array, or one query
// per line. Blank and repeated queries are dropped; at most limit are kept.
func ParseQueries(response string, limit int) []string {
	var candidates []string
	if obj, err := common.ParseJSON[expansionResult](response); err == nil && len(obj.Queries) > 0 {
		candidates = obj.Queries
	} else if arr, err := common.ParseJSON[[]string](response); err == nil && len(arr) > 0 {
		candidates = arr
	} else {
		candidates = splitLines(response)
	}

	seen := make(map[string]struct{}, len(candidates))
	queries := make([]string, 0, len(candidates))
	for _, q := range candidates {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		key := strings.ToLower(q)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		queries = append(queries, q)
		if limit > 0 && len(queries) == limit {
			break
		}
	}
	return queries
}

func splitLines(response string) []string {
	var out []string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "```") || strings.HasSuffix(line, ":") {
			continue
		}
		line = listMarker.ReplaceAllString(line, "")
		line = strings.Trim(line, `"'`)
		out = append(out, line)
	}
	return out
}
