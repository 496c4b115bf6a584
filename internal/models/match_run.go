package models

import "time"

// MatchRunEntry is one ranked result inside a recorded match run.
type MatchRunEntry struct {
	Filename        string  `bson:"filename" json:"filename"`
	MatchPercentage float64 `bson:"match_percentage" json:"match_percentage"`
}

// MatchRun is a persisted record of one match request, stored in MongoDB so
// past runs can be reviewed.
type MatchRun struct {
	RunID      string          `bson:"run_id" json:"run_id"`
	JobExcerpt string          `bson:"job_excerpt" json:"job_excerpt"` // first part of the job description
	MatchCount int             `bson:"match_count" json:"match_count"`
	Top        []MatchRunEntry `bson:"top" json:"top"`
	Summary    string          `bson:"summary" json:"summary"`
	CreatedAt  time.Time       `bson:"created_at" json:"created_at"`
}
