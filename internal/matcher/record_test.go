package matcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"ResuMatch/pkg/logger"
)

// stubEncoder returns deterministic vectors derived from the text length and
// records every batch it receives.
type stubEncoder struct {
	batches [][]string
	err     error
}

func (s *stubEncoder) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return embeddingFor(text), nil
}

func (s *stubEncoder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.batches = append(s.batches, append([]string(nil), texts...))
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = embeddingFor(text)
	}
	return out, nil
}

func embeddingFor(text string) []float32 {
	return []float32{float32(len(text)), float32(len(text) % 7)}
}

func testLogger() *logger.Logger {
	logger.Init(logrus.ErrorLevel)
	return logger.New("matcher-test", "test")
}

func writeResume(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestRecordIDDeterministic(t *testing.T) {
	first := RecordID("/data/resume.pdf", 1700000000000000000)
	second := RecordID("/data/resume.pdf", 1700000000000000000)

	if first != second {
		t.Errorf("same path and mtime produced different ids: %s vs %s", first, second)
	}
	if !strings.HasPrefix(first, "resume.pdf_") {
		t.Errorf("id %s does not start with the filename", first)
	}
	if got := len(strings.TrimPrefix(first, "resume.pdf_")); got != 8 {
		t.Errorf("id hash suffix has length %d, want 8", got)
	}

	touched := RecordID("/data/resume.pdf", 1700000000000000001)
	if touched == first {
		t.Error("changing the mtime did not change the id")
	}
	moved := RecordID("/other/resume.pdf", 1700000000000000000)
	if moved == first {
		t.Error("changing the path did not change the id")
	}
}

func TestBuildEmbedsFullTextAndSections(t *testing.T) {
	dir := t.TempDir()
	path := writeResume(t, dir, "jane.txt", "irrelevant on disk")

	sections := map[string]string{
		SectionSkills:     "Go, SQL",
		SectionExperience: "Five years",
		SectionOthers:     "",
	}

	encoder := &stubEncoder{}
	builder := NewRecordBuilder(encoder, testLogger())

	record, err := builder.Build(context.Background(), path, sections)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if len(encoder.batches) != 1 {
		t.Fatalf("expected one batch call, got %d", len(encoder.batches))
	}
	wantBatch := []string{"Go, SQL\nFive years", "Go, SQL", "Five years"}
	if strings.Join(encoder.batches[0], "|") != strings.Join(wantBatch, "|") {
		t.Errorf("batch = %v, want %v", encoder.batches[0], wantBatch)
	}

	if record.Filename != "jane.txt" {
		t.Errorf("Filename = %s, want jane.txt", record.Filename)
	}
	if record.FullText != "Go, SQL\nFive years" {
		t.Errorf("FullText = %q", record.FullText)
	}
	if len(record.Sections) != 2 || len(record.SectionEmbeddings) != 2 {
		t.Errorf("expected 2 sections with embeddings, got %d/%d", len(record.Sections), len(record.SectionEmbeddings))
	}
	wantVec := embeddingFor("Go, SQL")
	gotVec := record.SectionEmbeddings[SectionSkills]
	if len(gotVec) != len(wantVec) || gotVec[0] != wantVec[0] {
		t.Errorf("skills embedding = %v, want %v", gotVec, wantVec)
	}
}

func TestBuildRejectsEmptyContent(t *testing.T) {
	dir := t.TempDir()
	path := writeResume(t, dir, "blank.txt", "")

	builder := NewRecordBuilder(&stubEncoder{}, testLogger())

	_, err := builder.Build(context.Background(), path, map[string]string{SectionOthers: "   "})
	if !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
}

func TestBuildIDStableUntilFileChanges(t *testing.T) {
	dir := t.TempDir()
	path := writeResume(t, dir, "stable.txt", "content")
	sections := map[string]string{SectionOthers: "content"}
	builder := NewRecordBuilder(&stubEncoder{}, testLogger())

	first, err := builder.Build(context.Background(), path, sections)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	second, err := builder.Build(context.Background(), path, sections)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("id changed between runs: %s vs %s", first.ID, second.ID)
	}

	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatalf("failed to change mtime: %v", err)
	}
	third, err := builder.Build(context.Background(), path, sections)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if third.ID == first.ID {
		t.Error("id did not change after the mtime changed")
	}
}

func TestBuildPropagatesEncoderErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeResume(t, dir, "broken.txt", "content")

	encoder := &stubEncoder{err: errors.New("model offline")}
	builder := NewRecordBuilder(encoder, testLogger())

	_, err := builder.Build(context.Background(), path, map[string]string{SectionOthers: "content"})
	if err == nil || !strings.Contains(err.Error(), "model offline") {
		t.Fatalf("expected encoder error, got %v", err)
	}
}
