package extractor

import (
	"context"
	"fmt"
	"strings"

	"github.com/unidoc/unioffice/v2/document"
)

// WordExtractor extracts text from Word documents, paragraphs first and then
// table cells.
type WordExtractor struct{}

// NewWordExtractor creates a Word extractor.
func NewWordExtractor() *WordExtractor {
	return &WordExtractor{}
}

func (e *WordExtractor) Extensions() []string {
	return []string{".docx", ".doc"}
}

func (e *WordExtractor) Extract(ctx context.Context, path string) (string, error) {
	doc, err := document.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open word document: %w", err)
	}
	defer doc.Close()

	var sb strings.Builder

	for _, para := range doc.Paragraphs() {
		for _, run := range para.Runs() {
			sb.WriteString(run.Text())
		}
		sb.WriteString("\n")
	}

	for _, table := range doc.Tables() {
		for _, row := range table.Rows() {
			for _, cell := range row.Cells() {
				for _, para := range cell.Paragraphs() {
					for _, run := range para.Runs() {
						sb.WriteString(run.Text())
					}
					sb.WriteString("\n")
				}
			}
		}
	}

	return sb.String(), nil
}
