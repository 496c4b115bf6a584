package service

import (
	"context"
	"path/filepath"

	"ResuMatch/internal/extractor"
	"ResuMatch/internal/matcher"
	"ResuMatch/internal/models"
	"ResuMatch/internal/profile"
	"ResuMatch/pkg/logger"
)

// Publisher emits index lifecycle events. *kafka.IndexEventPublisher
// satisfies it.
type Publisher interface {
	Publish(ctx context.Context, entry *models.IndexLogEntry) error
}

// Uploader archives source files. *minio.Client satisfies it.
type Uploader interface {
	Upload(ctx context.Context, objectName, filePath, contentType string) (int64, error)
}

// ProfileCatalog persists extracted candidate profiles. *profile.Catalog
// satisfies it.
type ProfileCatalog interface {
	Upsert(ctx context.Context, recordID, filename string, p profile.Profile) error
	ByRecordID(ctx context.Context, recordID string) (*models.CandidateProfile, error)
}

// SkillGraph maintains the candidate skill graph. *profile.Graph satisfies it.
type SkillGraph interface {
	UpsertCandidate(ctx context.Context, recordID, filename string, p profile.Profile) error
	CandidatesBySkill(ctx context.Context, skill string) ([]models.CandidateRef, error)
}

// EventHook publishes one Kafka event per file processed by an indexing run.
// Publish failures are logged and swallowed so a broker outage cannot fail
// the run itself.
type EventHook struct {
	events Publisher
	log    *logger.Logger
}

// NewEventHook wires index events to the given publisher.
func NewEventHook(events Publisher, log *logger.Logger) *EventHook {
	return &EventHook{events: events, log: log}
}

func (h *EventHook) DocumentIndexed(ctx context.Context, record *matcher.DocumentRecord) {
	h.publish(ctx, &models.IndexLogEntry{
		RecordID: record.ID,
		Filename: record.Filename,
		Status:   models.IndexStatusIndexed,
	})
}

func (h *EventHook) DocumentSkipped(ctx context.Context, path, reason string) {
	h.publish(ctx, &models.IndexLogEntry{
		Filename: filepath.Base(path),
		Status:   models.IndexStatusSkipped,
		Message:  reason,
	})
}

func (h *EventHook) DocumentFailed(ctx context.Context, path string, err error) {
	h.publish(ctx, &models.IndexLogEntry{
		Filename: filepath.Base(path),
		Status:   models.IndexStatusFailed,
		Message:  err.Error(),
	})
}

func (h *EventHook) publish(ctx context.Context, entry *models.IndexLogEntry) {
	if err := h.events.Publish(ctx, entry); err != nil {
		h.log.WithError(err).WithField("file", entry.Filename).Warn("Failed to publish index event")
	}
}

// ArchiveHook copies every successfully indexed source file into the object
// store under resumes/<record_id><ext>, so the original upload can be
// retrieved after the data directory is gone.
type ArchiveHook struct {
	uploader Uploader
	log      *logger.Logger
}

// NewArchiveHook wires indexed files to the given uploader.
func NewArchiveHook(uploader Uploader, log *logger.Logger) *ArchiveHook {
	return &ArchiveHook{uploader: uploader, log: log}
}

func (h *ArchiveHook) DocumentIndexed(ctx context.Context, record *matcher.DocumentRecord) {
	objectName := "resumes/" + record.ID + filepath.Ext(record.Path)
	contentType := extractor.DetectContentType(record.Path)

	if _, err := h.uploader.Upload(ctx, objectName, record.Path, contentType); err != nil {
		h.log.WithError(err).WithField("file", record.Filename).Warn("Failed to archive source file")
	}
}

func (h *ArchiveHook) DocumentSkipped(ctx context.Context, path, reason string) {}

func (h *ArchiveHook) DocumentFailed(ctx context.Context, path string, err error) {}

// CatalogHook extracts the structured profile of every indexed resume and
// mirrors it into the candidate catalog and, when configured, the skill
// graph. Either target may be nil.
type CatalogHook struct {
	catalog ProfileCatalog
	graph   SkillGraph
	log     *logger.Logger
}

// NewCatalogHook wires indexed records to the profile stores.
func NewCatalogHook(catalog ProfileCatalog, graph SkillGraph, log *logger.Logger) *CatalogHook {
	return &CatalogHook{catalog: catalog, graph: graph, log: log}
}

func (h *CatalogHook) DocumentIndexed(ctx context.Context, record *matcher.DocumentRecord) {
	p := profile.Extract(record.RawText)

	if h.catalog != nil {
		if err := h.catalog.Upsert(ctx, record.ID, record.Filename, p); err != nil {
			h.log.WithError(err).WithField("file", record.Filename).Warn("Failed to catalog profile")
		}
	}
	if h.graph != nil {
		if err := h.graph.UpsertCandidate(ctx, record.ID, record.Filename, p); err != nil {
			h.log.WithError(err).WithField("file", record.Filename).Warn("Failed to update skill graph")
		}
	}
}

func (h *CatalogHook) DocumentSkipped(ctx context.Context, path, reason string) {}

func (h *CatalogHook) DocumentFailed(ctx context.Context, path string, err error) {}

var (
	_ matcher.IndexHook = (*EventHook)(nil)
	_ matcher.IndexHook = (*ArchiveHook)(nil)
	_ matcher.IndexHook = (*CatalogHook)(nil)
)
