package adapters

import (
	"fmt"
	"unicode/utf8"

	"github.com/ppiankov/xingming/internal/extract"
)

// PlainAdapter is the fallback adapter for text exports
type PlainAdapter struct{}

// NewPlainAdapter creates a new plain text adapter
func NewPlainAdapter() *PlainAdapter {
	return &PlainAdapter{}
}

// Name returns the adapter name
func (a *PlainAdapter) Name() string {
	return "plain"
}

// CanHandle always returns true (fallback adapter)
func (a *PlainAdapter) CanHandle(location string, contentType string) bool {
	return true
}

// Extract normalizes line endings of UTF-8 text
func (a *PlainAdapter) Extract(content []byte) (string, error) {
	if !utf8.Valid(content) {
		return "", fmt.Errorf("chart export is not valid UTF-8 text")
	}
	return extract.Normalize(string(content)), nil
}
