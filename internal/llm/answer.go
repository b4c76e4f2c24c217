package llm

import (
	"fmt"
	"strings"

	"github.com/agenthands/sift/internal/core/model"
)

const DefaultAnswerTopN = 5

const defaultAnswerPrompt = `Based on the following web search results, answer the user's query: '%s'.
Web Results:
%s
Provide a concise, accurate, and well-cited answer.`

// BuildAnswerPrompt renders template (query, web results) over the first topN results.
func BuildAnswerPrompt(template, query string, results []model.Result, topN int) string {
	if template == "" {
		template = defaultAnswerPrompt
	}
	if topN <= 0 {
		topN = DefaultAnswerTopN
	}
	if len(results) > topN {
		results = results[:topN]
	}

	blocks := make([]string, 0, len(results))
	for _, r := range results {
		blocks = append(blocks, fmt.Sprintf("Title: %s\nSnippet: %s", r.Title, r.Snippet))
	}

	return fmt.Sprintf(template, query, strings.Join(blocks, "\n\n"))
}
