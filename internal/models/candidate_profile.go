package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CandidateProfile is the structured data extracted from a resume, persisted
// in MySQL as a browsable catalog beside the vector store. RecordID ties the
// row to the stored document.
type CandidateProfile struct {
	gorm.Model
	RecordID   string         `gorm:"uniqueIndex;not null;size:191" json:"record_id"`
	Filename   string         `gorm:"size:512" json:"filename"`
	Name       string         `gorm:"size:255" json:"name"`
	Experience string         `gorm:"size:64" json:"experience"`
	Skills     datatypes.JSON `json:"skills"` // JSON array of skill names
}

// TableName overrides the gorm default.
func (CandidateProfile) TableName() string {
	return "candidate_profiles"
}
