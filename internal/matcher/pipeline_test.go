package matcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeExtractor reads .txt files from disk and fails on request.
type fakeExtractor struct {
	failNames map[string]error
}

func (f *fakeExtractor) Supports(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".txt"
}

func (f *fakeExtractor) Extract(ctx context.Context, path string) (string, error) {
	if err, ok := f.failNames[filepath.Base(path)]; ok {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// fakeStore records upserts and detects overlapping upserts for the same
// filename.
type fakeStore struct {
	mu        sync.Mutex
	upserts   []*DocumentRecord
	deletes   []string
	failFiles map[string]error
	inFlight  map[string]int
	overlap   bool

	matches       []SectionMatch
	queryErr      error
	lastTopK      int
	lastThreshold float64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		failFiles: make(map[string]error),
		inFlight:  make(map[string]int),
	}
}

func (f *fakeStore) EnsureCollections(ctx context.Context) error { return nil }

func (f *fakeStore) Upsert(ctx context.Context, record *DocumentRecord) error {
	f.mu.Lock()
	f.inFlight[record.Filename]++
	if f.inFlight[record.Filename] > 1 {
		f.overlap = true
	}
	f.mu.Unlock()

	time.Sleep(2 * time.Millisecond)

	f.mu.Lock()
	f.inFlight[record.Filename]--
	err := f.failFiles[record.Filename]
	if err == nil {
		f.upserts = append(f.upserts, record)
	}
	f.mu.Unlock()
	return err
}

func (f *fakeStore) QuerySections(ctx context.Context, embedding []float32, topK int, minSimilarity float64) ([]SectionMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastTopK = topK
	f.lastThreshold = minSimilarity
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.matches, nil
}

func (f *fakeStore) FetchDocument(ctx context.Context, recordID string) (*StoredDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, record := range f.upserts {
		if record.ID == recordID {
			return &StoredDocument{ID: record.ID, Filename: record.Filename, Text: record.FullText, Embedding: record.DocEmbedding}, nil
		}
	}
	return nil, ErrRecordNotFound
}

func (f *fakeStore) DeleteByFilename(ctx context.Context, filename string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, filename)
	return nil
}

func (f *fakeStore) CountDocuments(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.upserts)), nil
}

func (f *fakeStore) Flush(ctx context.Context) error { return nil }

// recordingHook collects hook notifications by filename.
type recordingHook struct {
	mu      sync.Mutex
	indexed []string
	skipped []string
	failed  []string
}

func (h *recordingHook) DocumentIndexed(ctx context.Context, record *DocumentRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.indexed = append(h.indexed, record.Filename)
}

func (h *recordingHook) DocumentSkipped(ctx context.Context, path, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.skipped = append(h.skipped, filepath.Base(path))
}

func (h *recordingHook) DocumentFailed(ctx context.Context, path string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failed = append(h.failed, filepath.Base(path))
}

func newTestPipeline(store Store, extractor Extractor, opts ...PipelineOption) *IndexingPipeline {
	log := testLogger()
	builder := NewRecordBuilder(&stubEncoder{}, log)
	return NewIndexingPipeline(extractor, builder, store, log, opts...)
}

func TestRunIndexesSupportedFilesOnly(t *testing.T) {
	dir := t.TempDir()
	writeResume(t, dir, "alice.txt", "Skills\nGo, SQL")
	writeResume(t, dir, "bob.txt", "Experience\nFive years")
	writeResume(t, dir, "photo.png", "not a resume")

	store := newFakeStore()
	pipeline := newTestPipeline(store, &fakeExtractor{})

	summary, err := pipeline.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if summary.Indexed != 2 || summary.Skipped != 0 || summary.Failed != 0 {
		t.Errorf("summary = %+v, want 2 indexed", summary)
	}
	if len(store.upserts) != 2 {
		t.Errorf("store saw %d upserts, want 2", len(store.upserts))
	}
}

func TestRunToleratesPerFileFailures(t *testing.T) {
	dir := t.TempDir()
	writeResume(t, dir, "good.txt", "Skills\nGo")
	writeResume(t, dir, "broken.txt", "unreadable")
	writeResume(t, dir, "empty.txt", "")
	writeResume(t, dir, "storefail.txt", "Experience\nYears")

	store := newFakeStore()
	store.failFiles["storefail.txt"] = errors.New("insert rejected")
	extractor := &fakeExtractor{failNames: map[string]error{"broken.txt": errors.New("corrupt file")}}
	hook := &recordingHook{}
	pipeline := newTestPipeline(store, extractor, WithHooks(hook))

	summary, err := pipeline.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if summary.Indexed != 1 {
		t.Errorf("Indexed = %d, want 1", summary.Indexed)
	}
	if summary.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", summary.Skipped)
	}
	if summary.Failed != 1 {
		t.Errorf("Failed = %d, want 1", summary.Failed)
	}
	if _, ok := summary.Failures["storefail.txt"]; !ok {
		t.Errorf("Failures = %v, want an entry for storefail.txt", summary.Failures)
	}

	if len(hook.indexed) != 1 || hook.indexed[0] != "good.txt" {
		t.Errorf("hook.indexed = %v, want [good.txt]", hook.indexed)
	}
	if len(hook.skipped) != 2 {
		t.Errorf("hook.skipped = %v, want 2 entries", hook.skipped)
	}
	if len(hook.failed) != 1 || hook.failed[0] != "storefail.txt" {
		t.Errorf("hook.failed = %v, want [storefail.txt]", hook.failed)
	}
}

func TestRunMissingDirectory(t *testing.T) {
	pipeline := newTestPipeline(newFakeStore(), &fakeExtractor{})

	_, err := pipeline.Run(context.Background(), filepath.Join(t.TempDir(), "absent"))
	if !errors.Is(err, ErrDirectoryNotFound) {
		t.Fatalf("expected ErrDirectoryNotFound, got %v", err)
	}
}

func TestRunExcludePatterns(t *testing.T) {
	dir := t.TempDir()
	writeResume(t, dir, "alice.txt", "Skills\nGo")
	writeResume(t, dir, "draft_bob.txt", "Skills\nSQL")

	store := newFakeStore()
	pipeline := newTestPipeline(store, &fakeExtractor{}, WithExcludePatterns("draft_*"))

	summary, err := pipeline.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if summary.Indexed != 1 {
		t.Errorf("Indexed = %d, want 1", summary.Indexed)
	}
	if len(store.upserts) != 1 || store.upserts[0].Filename != "alice.txt" {
		t.Errorf("unexpected upserts: %v", store.upserts)
	}
}

func TestRunSerializesUpsertsPerFilename(t *testing.T) {
	dir := t.TempDir()
	for _, sub := range []string{"a", "b", "c", "d"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatalf("failed to create subdir: %v", err)
		}
		writeResume(t, filepath.Join(dir, sub), "resume.txt", "Skills\nGo in "+sub)
	}

	store := newFakeStore()
	pipeline := newTestPipeline(store, &fakeExtractor{}, WithWorkers(4))

	if _, err := pipeline.Run(context.Background(), dir); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if store.overlap {
		t.Error("upserts for the same filename overlapped")
	}
	if len(store.upserts) != 4 {
		t.Errorf("store saw %d upserts, want 4", len(store.upserts))
	}
}

func TestIndexFileUpsertsRecord(t *testing.T) {
	dir := t.TempDir()
	path := writeResume(t, dir, "carol.txt", "Contact\ncarol@x.dev\nSkills\nGo")

	store := newFakeStore()
	pipeline := newTestPipeline(store, &fakeExtractor{})

	if err := pipeline.IndexFile(context.Background(), path); err != nil {
		t.Fatalf("IndexFile returned error: %v", err)
	}

	if len(store.upserts) != 1 {
		t.Fatalf("store saw %d upserts, want 1", len(store.upserts))
	}
	record := store.upserts[0]
	if record.Filename != "carol.txt" {
		t.Errorf("Filename = %s, want carol.txt", record.Filename)
	}
	if record.Sections[SectionContactInfo] == "" || record.Sections[SectionSkills] == "" {
		t.Errorf("record sections incomplete: %v", record.Sections)
	}
}
