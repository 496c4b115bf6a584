package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"ResuMatch/internal/database/mysql"
	"ResuMatch/internal/models"
)

// Catalog persists extracted profiles in MySQL so candidates can be browsed
// outside the vector store. One row per filename; the record id tracks the
// currently indexed version of the file.
type Catalog struct {
	db *gorm.DB
}

// NewCatalog migrates the candidate_profiles table and returns the catalog.
func NewCatalog(client *mysql.Client) (*Catalog, error) {
	if client == nil || client.DB == nil {
		return nil, errors.New("mysql client is not initialized")
	}
	if err := client.DB.AutoMigrate(&models.CandidateProfile{}); err != nil {
		return nil, fmt.Errorf("failed to migrate candidate profiles: %w", err)
	}
	return &Catalog{db: client.DB}, nil
}

// Upsert stores the profile for a record. Rows for the same filename under an
// older record id are removed first, so re-indexing a changed file replaces
// its profile instead of accumulating stale versions.
func (c *Catalog) Upsert(ctx context.Context, recordID, filename string, p Profile) error {
	skills, err := json.Marshal(p.Skills)
	if err != nil {
		return fmt.Errorf("failed to encode skills: %w", err)
	}

	db := c.db.WithContext(ctx)
	if err := db.Unscoped().
		Where("filename = ? AND record_id <> ?", filename, recordID).
		Delete(&models.CandidateProfile{}).Error; err != nil {
		return fmt.Errorf("failed to drop stale profiles for %s: %w", filename, err)
	}

	var row models.CandidateProfile
	err = db.Where("record_id = ?", recordID).First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = models.CandidateProfile{
			RecordID:   recordID,
			Filename:   filename,
			Name:       p.Name,
			Experience: p.Experience,
			Skills:     datatypes.JSON(skills),
		}
		return db.Create(&row).Error
	case err != nil:
		return fmt.Errorf("failed to load profile for %s: %w", recordID, err)
	}

	row.Filename = filename
	row.Name = p.Name
	row.Experience = p.Experience
	row.Skills = datatypes.JSON(skills)
	return db.Save(&row).Error
}

// ByRecordID returns the cataloged profile for a record id.
func (c *Catalog) ByRecordID(ctx context.Context, recordID string) (*models.CandidateProfile, error) {
	var row models.CandidateProfile
	if err := c.db.WithContext(ctx).Where("record_id = ?", recordID).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
