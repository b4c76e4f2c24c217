package model

import (
	"errors"
	"fmt"
	"strings"
)

type Mode string

const (
	ModeBasic    Mode = "basic"
	ModeAdvanced Mode = "advanced"
)

var ErrInvalidMode = errors.New("invalid search mode")

// ParseMode maps a request value to a Mode. Empty means advanced.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeAdvanced:
		return ModeAdvanced, nil
	case ModeBasic:
		return ModeBasic, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

type SearchOutput struct {
	Results  []Result `json:"results"`
	Answer   *string  `json:"answer,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}
