package matcher

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/djherbis/times"

	"ResuMatch/pkg/logger"
)

// RecordBuilder turns sectionized document text into an embeddable record
// with a deterministic id.
type RecordBuilder struct {
	encoder Encoder
	log     *logger.Logger
}

// NewRecordBuilder creates a RecordBuilder around the injected encoder.
func NewRecordBuilder(encoder Encoder, log *logger.Logger) *RecordBuilder {
	return &RecordBuilder{encoder: encoder, log: log}
}

// RecordID derives the stable id for a file: the base filename joined with
// the first 8 hex characters of the MD5 of path and modification time. The
// same file at the same mtime always maps to the same id; touching the file
// changes it.
func RecordID(path string, mtimeNano int64) string {
	idString := path + "_" + strconv.FormatInt(mtimeNano, 10)
	sum := md5.Sum([]byte(idString))
	return filepath.Base(path) + "_" + hex.EncodeToString(sum[:])[:8]
}

// Build creates the record for the file at path from its sectionized text.
// The full text and every non-empty section are embedded in one batch call,
// full text first. A document without embeddable content yields
// ErrEmptyContent.
func (b *RecordBuilder) Build(ctx context.Context, path string, sections map[string]string) (*DocumentRecord, error) {
	fullText := JoinSections(sections)
	if fullText == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyContent, path)
	}

	spec, err := times.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	filename := filepath.Base(path)

	// Batch layout: full text at index 0, then the non-empty sections in
	// vocabulary order.
	texts := []string{fullText}
	var names []string
	for _, name := range SectionNames {
		text := strings.TrimSpace(sections[name])
		if text == "" {
			continue
		}
		names = append(names, name)
		texts = append(texts, text)
	}

	vectors, err := b.encoder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed %s: %w", filename, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("encoder returned %d vectors for %d texts", len(vectors), len(texts))
	}

	record := &DocumentRecord{
		ID:                RecordID(path, spec.ModTime().UnixNano()),
		Filename:          filename,
		Path:              path,
		FullText:          fullText,
		DocEmbedding:      vectors[0],
		Sections:          make(map[string]string, len(names)),
		SectionEmbeddings: make(map[string][]float32, len(names)),
	}
	for i, name := range names {
		record.Sections[name] = texts[i+1]
		record.SectionEmbeddings[name] = vectors[i+1]
	}

	b.log.WithFields(map[string]interface{}{
		"record_id": record.ID,
		"sections":  len(names),
	}).Debug("built document record")

	return record, nil
}
