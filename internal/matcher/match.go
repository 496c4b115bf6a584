package matcher

import (
	"context"
	"fmt"
	"strings"

	"ResuMatch/pkg/logger"
)

// MatchPipeline embeds job descriptions and runs section-level queries.
// Matching never mutates stored state.
type MatchPipeline struct {
	encoder Encoder
	store   Store
	log     *logger.Logger
}

// NewMatchPipeline creates a MatchPipeline over the injected collaborators.
func NewMatchPipeline(encoder Encoder, store Store, log *logger.Logger) *MatchPipeline {
	return &MatchPipeline{encoder: encoder, store: store, log: log}
}

// Match embeds jobText, searches the section collection and aggregates the
// surviving hits. No neighbor at or above the floor yields an empty result,
// not an error.
func (m *MatchPipeline) Match(ctx context.Context, jobText string, topK int, minSimilarity float64) (*MatchResult, error) {
	embedding, err := m.encoder.Embed(ctx, jobText)
	if err != nil {
		return nil, fmt.Errorf("failed to embed job description: %w", err)
	}

	matches, err := m.store.QuerySections(ctx, embedding, topK, minSimilarity)
	if err != nil {
		return nil, err
	}

	m.log.WithFields(map[string]interface{}{
		"hits":  len(matches),
		"top_k": topK,
	}).Info("section query finished")

	return Aggregate(matches), nil
}

// FormatJobText renders sectionized job description text for embedding, one
// titled block per non-empty section in vocabulary order.
func FormatJobText(sections map[string]string) string {
	var sb strings.Builder
	for _, name := range SectionNames {
		text := strings.TrimSpace(sections[name])
		if text == "" {
			continue
		}
		sb.WriteString(titleCase(name))
		sb.WriteString(":\n")
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String())
}

// titleCase turns a section name like "contact_info" into "Contact Info".
func titleCase(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
