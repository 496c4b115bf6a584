package matcher

// DocumentRecord is the canonical indexed representation of one resume file:
// a deterministic id, the reconstructed full text with its embedding, and
// one text plus embedding per non-empty section.
type DocumentRecord struct {
	ID                string
	Filename          string
	Path              string
	FullText          string
	Sections          map[string]string
	DocEmbedding      []float32
	SectionEmbeddings map[string][]float32

	// RawText is the extracted text before sectionizing, in original line
	// order. It is handed to indexing hooks but never persisted.
	RawText string
}

// SectionMatch is one query-time hit against a stored section.
type SectionMatch struct {
	DocumentID      string
	SectionName     string
	Filename        string
	Text            string
	Distance        float32
	MatchPercentage float64
}

// StoredDocument is one row of the document collection.
type StoredDocument struct {
	ID        string
	Filename  string
	Text      string
	Embedding []float32
}

// MatchResult aggregates the surviving section hits of one query.
type MatchResult struct {
	// Matches holds every surviving section hit in store rank order.
	Matches []SectionMatch
	// DocumentScores maps each document id to the mean percentage of its
	// surviving section hits.
	DocumentScores map[string]float64
	// BestPerFile keeps the single best section hit per filename, ordered
	// by percentage descending.
	BestPerFile []SectionMatch
}

// IndexSummary reports the outcome of one indexing run.
type IndexSummary struct {
	Indexed  int
	Skipped  int
	Failed   int
	Failures map[string]string
}
