package matcher

import "context"

// Encoder produces fixed-length embedding vectors. All vectors feeding one
// index must share their dimensionality.
type Encoder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Extractor converts document files into plain text.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
	Supports(path string) bool
}

// Store persists document records across two collections, one row per
// document and one row per section, and answers nearest-neighbor queries
// over the section collection.
type Store interface {
	// EnsureCollections creates, indexes and loads both collections.
	// Idempotent.
	EnsureCollections(ctx context.Context) error

	// Upsert replaces all rows for the record's filename in both
	// collections with the record's rows. The first upsert for a new
	// filename deletes nothing and is not an error.
	Upsert(ctx context.Context, record *DocumentRecord) error

	// QuerySections runs a kNN search over the section collection and
	// returns the hits at or above the similarity floor, in store rank
	// order. No hits is an empty slice, not an error.
	QuerySections(ctx context.Context, embedding []float32, topK int, minSimilarity float64) ([]SectionMatch, error)

	// FetchDocument looks up one document row by record id.
	FetchDocument(ctx context.Context, recordID string) (*StoredDocument, error)

	// DeleteByFilename removes all rows for a filename from both
	// collections. A filename with no rows succeeds silently.
	DeleteByFilename(ctx context.Context, filename string) error

	// CountDocuments reports the number of rows in the document collection.
	CountDocuments(ctx context.Context) (int64, error)

	// Flush persists pending writes so they become visible to queries.
	Flush(ctx context.Context) error
}

// EphemeralStore is a Store whose collections can be dropped once a
// one-shot matching run is finished.
type EphemeralStore interface {
	Store
	DropCollections(ctx context.Context) error
}

// IndexHook observes indexing progress. Implementations must tolerate calls
// from concurrent workers.
type IndexHook interface {
	DocumentIndexed(ctx context.Context, record *DocumentRecord)
	DocumentSkipped(ctx context.Context, path, reason string)
	DocumentFailed(ctx context.Context, path string, err error)
}
