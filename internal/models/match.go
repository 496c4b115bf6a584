package models

// RankedResume is one deduplicated, best-section-per-file match enriched with
// the structured profile data, as returned by the API.
type RankedResume struct {
	Filename        string   `json:"filename"`
	DocumentID      string   `json:"document_id"`
	SectionName     string   `json:"section_name"`
	MatchPercentage float64  `json:"match_percentage"`
	Name            string   `json:"name"`
	Skills          []string `json:"skills"`
	Experience      string   `json:"experience"`
}

// MatchResponse is the API payload for a match request. Matches are ordered
// best-first; Scores maps document ids to their mean section percentage.
type MatchResponse struct {
	Matches []RankedResume     `json:"matches"`
	Scores  map[string]float64 `json:"scores"`
	Summary string             `json:"summary"`
}

// IndexResponse is the API payload for an indexing request.
type IndexResponse struct {
	Indexed  int               `json:"indexed"`
	Skipped  int               `json:"skipped"`
	Failed   int               `json:"failed"`
	Failures map[string]string `json:"failures,omitempty"` // path -> reason
}

// StatusResponse reports service liveness plus the optional capabilities the
// deployment has enabled. Health maps each checked dependency to "ok" or the
// failure it reported.
type StatusResponse struct {
	Status       string            `json:"status"`
	Message      string            `json:"message"`
	Documents    int64             `json:"documents"`
	Extensions   []string          `json:"extensions"`
	Capabilities map[string]bool   `json:"capabilities"`
	Health       map[string]string `json:"health,omitempty"`
}

// CandidateRef is a lightweight pointer to a cataloged candidate, as returned
// by the skill graph queries.
type CandidateRef struct {
	RecordID string `json:"record_id"`
	Filename string `json:"filename"`
	Name     string `json:"name"`
}
