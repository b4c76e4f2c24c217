package common

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseJSON extracts the outermost JSON object or array from an LLM reply and
// unmarshals it into T. Markdown fences and chatter around the payload are ignored.
func ParseJSON[T any](response string) (T, error) {
	var zero T

	openCh, closeCh := byte('{'), byte('}')
	start := strings.IndexAny(response, "{[")
	if start == -1 {
		return zero, fmt.Errorf("no JSON payload found in response")
	}
	if response[start] == '[' {
		openCh, closeCh = '[', ']'
	}
	end := strings.LastIndexByte(response, closeCh)
	if end <= start {
		return zero, fmt.Errorf("unterminated JSON payload (missing '%c' for '%c')", closeCh, openCh)
	}

	jsonStr := response[start : end+1]

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w\nData: %s", err, jsonStr)
	}

	return result, nil
}
