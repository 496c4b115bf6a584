package models

import "time"

// IndexEventStatus enumerates the lifecycle states of an indexing run.
type IndexEventStatus string

const (
	IndexStatusStarted  IndexEventStatus = "STARTED"
	IndexStatusIndexed  IndexEventStatus = "INDEXED"
	IndexStatusSkipped  IndexEventStatus = "SKIPPED"
	IndexStatusFailed   IndexEventStatus = "FAILED"
	IndexStatusFinished IndexEventStatus = "FINISHED"
)

// IndexLogEntry is the event published to Kafka for every step of an indexing
// run. RecordID is empty for run-level events (STARTED, FINISHED) and for
// files that failed before a record could be built.
type IndexLogEntry struct {
	RecordID  string           `json:"record_id,omitempty"`
	Filename  string           `json:"filename,omitempty"`
	Status    IndexEventStatus `json:"status"`
	Message   string           `json:"message,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}
