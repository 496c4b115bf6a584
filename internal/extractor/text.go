package extractor

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// TextExtractor reads plain text files as-is, stripping a UTF-8 BOM if
// present.
type TextExtractor struct{}

// NewTextExtractor creates a plain text extractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

func (e *TextExtractor) Extensions() []string {
	return []string{".txt"}
}

func (e *TextExtractor) Extract(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read text file: %w", err)
	}

	return strings.TrimPrefix(string(data), "\uFEFF"), nil
}
