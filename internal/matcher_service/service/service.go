package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"ResuMatch/internal/config"
	"ResuMatch/internal/extractor"
	"ResuMatch/internal/matcher"
	"ResuMatch/internal/matcher_service/store"
	"ResuMatch/internal/models"
	"ResuMatch/internal/profile"
	"ResuMatch/pkg/logger"
)

// ErrCapabilityDisabled marks requests against a feature the deployment has
// not configured (history, catalog, skill graph).
var ErrCapabilityDisabled = errors.New("capability is not enabled")

// noUploadMatches is returned when an uploaded batch produces no hit at or
// above the similarity floor.
const noUploadMatches = "No matching resumes found in the uploaded files."

// noStoredMatches is the equivalent for queries against the persistent index.
const noStoredMatches = "No matching resumes found in the index."

const jobExcerptLength = 200

const healthCheckTimeout = 2 * time.Second

// TempStoreFactory creates an ephemeral store over freshly named collections
// for one uploaded-batch match.
type TempStoreFactory func(documents, sections string) (matcher.EphemeralStore, error)

// HealthCheck probes one backing dependency.
type HealthCheck func(ctx context.Context) error

// Dependencies bundles what the service orchestrates. Config, Log,
// Extractor, Encoder, Store, Summarizer and TempStores are required; the
// rest are optional and switch their capability off when nil.
type Dependencies struct {
	Config     *config.AppConfig
	Log        *logger.Logger
	Extractor  *extractor.Router
	Encoder    matcher.Encoder
	Store      matcher.Store
	Summarizer *Summarizer
	TempStores TempStoreFactory

	History  store.HistoryStore
	Catalog  ProfileCatalog
	Graph    SkillGraph
	Events   Publisher
	Uploader Uploader
	Health   map[string]HealthCheck
}

// Service implements the resume matching operations behind the HTTP API and
// the MCP server: directory indexing into the persistent store, one-shot
// matching of uploaded batches through temporary collections, and the
// capability-flagged stores around them.
type Service struct {
	cfg        *config.AppConfig
	log        *logger.Logger
	extractor  *extractor.Router
	encoder    matcher.Encoder
	store      matcher.Store
	builder    *matcher.RecordBuilder
	pipeline   *matcher.IndexingPipeline
	match      *matcher.MatchPipeline
	summarizer *Summarizer
	tempStores TempStoreFactory

	history  store.HistoryStore
	catalog  ProfileCatalog
	graph    SkillGraph
	events   Publisher
	uploader Uploader
	health   map[string]HealthCheck
}

// New validates the required collaborators and assembles the service,
// including the indexing pipeline over the persistent store with every
// configured hook attached.
func New(deps Dependencies) (*Service, error) {
	switch {
	case deps.Config == nil:
		return nil, errors.New("service: config is required")
	case deps.Log == nil:
		return nil, errors.New("service: logger is required")
	case deps.Extractor == nil:
		return nil, errors.New("service: extractor is required")
	case deps.Encoder == nil:
		return nil, errors.New("service: encoder is required")
	case deps.Store == nil:
		return nil, errors.New("service: store is required")
	case deps.Summarizer == nil:
		return nil, errors.New("service: summarizer is required")
	case deps.TempStores == nil:
		return nil, errors.New("service: temp store factory is required")
	}

	s := &Service{
		cfg:        deps.Config,
		log:        deps.Log,
		extractor:  deps.Extractor,
		encoder:    deps.Encoder,
		store:      deps.Store,
		builder:    matcher.NewRecordBuilder(deps.Encoder, deps.Log),
		summarizer: deps.Summarizer,
		tempStores: deps.TempStores,
		history:    deps.History,
		catalog:    deps.Catalog,
		graph:      deps.Graph,
		events:     deps.Events,
		uploader:   deps.Uploader,
		health:     deps.Health,
	}

	var hooks []matcher.IndexHook
	if s.events != nil {
		hooks = append(hooks, NewEventHook(s.events, s.log))
	}
	if s.uploader != nil {
		hooks = append(hooks, NewArchiveHook(s.uploader, s.log))
	}
	if s.catalog != nil || s.graph != nil {
		hooks = append(hooks, NewCatalogHook(s.catalog, s.graph, s.log))
	}

	matcherCfg := deps.Config.Matcher
	s.pipeline = matcher.NewIndexingPipeline(s.extractor, s.builder, s.store, s.log,
		matcher.WithWorkers(matcherCfg.Workers),
		matcher.WithExcludePatterns(matcherCfg.ExcludePatterns...),
		matcher.WithHooks(hooks...),
	)
	s.match = matcher.NewMatchPipeline(s.encoder, s.store, s.log)

	return s, nil
}

// IndexDirectory indexes every supported file under dir into the persistent
// collections and flushes so the documents become searchable. An empty dir
// falls back to the configured data directory.
func (s *Service) IndexDirectory(ctx context.Context, dir string) (*models.IndexResponse, error) {
	if dir == "" {
		dir = s.cfg.Matcher.DataDir
	}

	s.publishEvent(ctx, &models.IndexLogEntry{
		Status:  models.IndexStatusStarted,
		Message: dir,
	})

	summary, err := s.pipeline.Run(ctx, dir)
	if err != nil {
		s.publishEvent(ctx, &models.IndexLogEntry{
			Status:  models.IndexStatusFinished,
			Message: fmt.Sprintf("aborted: %v", err),
		})
		return nil, err
	}

	if err := s.store.Flush(ctx); err != nil {
		s.log.WithError(err).Warn("Flush after indexing failed, documents may appear late")
	}

	s.publishEvent(ctx, &models.IndexLogEntry{
		Status:  models.IndexStatusFinished,
		Message: fmt.Sprintf("indexed %d, skipped %d, failed %d", summary.Indexed, summary.Skipped, summary.Failed),
	})

	return &models.IndexResponse{
		Indexed:  summary.Indexed,
		Skipped:  summary.Skipped,
		Failed:   summary.Failed,
		Failures: summary.Failures,
	}, nil
}

// MatchUploaded indexes the uploaded resume files into temporary collections,
// matches the uploaded job description against them, and drops the
// collections afterwards. jobPath and resumesDir point at the handler's
// scratch directory holding the uploads.
func (s *Service) MatchUploaded(ctx context.Context, jobPath, resumesDir string, topK int, minSimilarity float64) (*models.MatchResponse, error) {
	topK, minSimilarity = s.matchDefaults(topK, minSimilarity)

	suffix, err := randomHex(8)
	if err != nil {
		return nil, fmt.Errorf("failed to name temporary collections: %w", err)
	}
	tempStore, err := s.tempStores("temp_documents_"+suffix, "temp_sections_"+suffix)
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary store: %w", err)
	}
	defer func() {
		if err := tempStore.DropCollections(context.WithoutCancel(ctx)); err != nil {
			s.log.WithError(err).Warn("Failed to drop temporary collections")
		}
	}()

	if err := tempStore.EnsureCollections(ctx); err != nil {
		return nil, err
	}

	tempPipeline := matcher.NewIndexingPipeline(s.extractor, s.builder, tempStore, s.log,
		matcher.WithWorkers(s.cfg.Matcher.Workers),
	)
	if _, err := tempPipeline.Run(ctx, resumesDir); err != nil {
		return nil, err
	}
	if err := tempStore.Flush(ctx); err != nil {
		return nil, fmt.Errorf("failed to flush temporary collections: %w", err)
	}

	query, err := s.jobQueryFromFile(ctx, jobPath)
	if err != nil {
		return nil, err
	}

	result, err := matcher.NewMatchPipeline(s.encoder, tempStore, s.log).Match(ctx, query, topK, minSimilarity)
	if err != nil {
		return nil, err
	}
	if len(result.BestPerFile) == 0 {
		return emptyMatchResponse(noUploadMatches), nil
	}

	ranked := s.enrichFromDir(ctx, result.BestPerFile, resumesDir)
	summary := s.summarizer.SummarizeMatches(ctx, query, result.BestPerFile)
	s.recordRun(ctx, query, result, summary)

	return &models.MatchResponse{
		Matches: ranked,
		Scores:  result.DocumentScores,
		Summary: summary,
	}, nil
}

// MatchStored matches a job description, given as raw text, against the
// persistent index.
func (s *Service) MatchStored(ctx context.Context, jobText string, topK int, minSimilarity float64) (*models.MatchResponse, error) {
	topK, minSimilarity = s.matchDefaults(topK, minSimilarity)

	query := matcher.FormatJobText(matcher.Sectionize(jobText))
	if query == "" {
		return nil, fmt.Errorf("job description has no content")
	}

	result, err := s.match.Match(ctx, query, topK, minSimilarity)
	if err != nil {
		return nil, err
	}
	if len(result.BestPerFile) == 0 {
		return emptyMatchResponse(noStoredMatches), nil
	}

	ranked := s.enrichStored(ctx, result.BestPerFile)
	summary := s.summarizer.SummarizeMatches(ctx, query, result.BestPerFile)
	s.recordRun(ctx, query, result, summary)

	return &models.MatchResponse{
		Matches: ranked,
		Scores:  result.DocumentScores,
		Summary: summary,
	}, nil
}

// ResumeEmbedding returns the stored document row for a record id, including
// its full-text embedding.
func (s *Service) ResumeEmbedding(ctx context.Context, recordID string) (*matcher.StoredDocument, error) {
	return s.store.FetchDocument(ctx, recordID)
}

// SummarizeResume fetches a stored resume and asks the LLM how well it fits
// the given job description.
func (s *Service) SummarizeResume(ctx context.Context, recordID, jobText string) (string, error) {
	doc, err := s.store.FetchDocument(ctx, recordID)
	if err != nil {
		return "", err
	}
	return s.summarizer.SummarizeResume(ctx, jobText, doc.Text), nil
}

// History returns the most recent match runs, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]*models.MatchRun, error) {
	if s.history == nil {
		return nil, fmt.Errorf("match history: %w", ErrCapabilityDisabled)
	}
	return s.history.RecentRuns(ctx, limit)
}

// CandidatesBySkill looks up cataloged candidates holding a skill.
func (s *Service) CandidatesBySkill(ctx context.Context, skill string) ([]models.CandidateRef, error) {
	if s.graph == nil {
		return nil, fmt.Errorf("skill graph: %w", ErrCapabilityDisabled)
	}
	return s.graph.CandidatesBySkill(ctx, skill)
}

// Status reports liveness, the enabled capabilities, the document count and
// the health of every probed dependency.
func (s *Service) Status(ctx context.Context) *models.StatusResponse {
	resp := &models.StatusResponse{
		Status:     "ok",
		Message:    "API is running.",
		Extensions: s.extractor.SupportedExtensions(),
		Capabilities: map[string]bool{
			"auth":    s.cfg.Auth.Enabled,
			"events":  s.events != nil,
			"archive": s.uploader != nil,
			"catalog": s.catalog != nil,
			"graph":   s.graph != nil,
			"history": s.history != nil,
		},
	}

	count, err := s.store.CountDocuments(ctx)
	if err != nil {
		s.log.WithError(err).Warn("Failed to count stored documents")
		resp.Status = "degraded"
	} else {
		resp.Documents = count
	}

	if len(s.health) > 0 {
		resp.Health = make(map[string]string, len(s.health))
		for name, check := range s.health {
			checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
			if err := check(checkCtx); err != nil {
				resp.Health[name] = err.Error()
				resp.Status = "degraded"
			} else {
				resp.Health[name] = "ok"
			}
			cancel()
		}
	}

	return resp
}

// matchDefaults substitutes the configured defaults for unset tuning values.
func (s *Service) matchDefaults(topK int, minSimilarity float64) (int, float64) {
	if topK <= 0 {
		topK = s.cfg.Matcher.TopK
	}
	if minSimilarity <= 0 {
		minSimilarity = s.cfg.Matcher.MinSimilarity
	}
	return topK, minSimilarity
}

// jobQueryFromFile extracts, sectionizes and formats a job description file
// into the query text that gets embedded.
func (s *Service) jobQueryFromFile(ctx context.Context, path string) (string, error) {
	text, err := s.extractor.Extract(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to read job description: %w", err)
	}
	query := matcher.FormatJobText(matcher.Sectionize(text))
	if query == "" {
		return "", fmt.Errorf("job description has no content")
	}
	return query, nil
}

// enrichFromDir builds the ranked response rows for an uploaded batch,
// extracting each candidate's structured profile from the uploaded file
// itself so the name heuristics see the original line order.
func (s *Service) enrichFromDir(ctx context.Context, best []matcher.SectionMatch, resumesDir string) []models.RankedResume {
	ranked := make([]models.RankedResume, 0, len(best))
	for _, m := range best {
		raw, err := s.extractor.Extract(ctx, filepath.Join(resumesDir, m.Filename))
		if err != nil {
			s.log.WithError(err).WithField("file", m.Filename).Warn("Failed to re-read upload for profile extraction")
			raw = ""
		}
		ranked = append(ranked, rankedResume(m, profile.Extract(raw)))
	}
	return ranked
}

// enrichStored builds the ranked response rows for a query against the
// persistent index, preferring the cataloged profile and falling back to
// on-the-fly extraction from the stored text.
func (s *Service) enrichStored(ctx context.Context, best []matcher.SectionMatch) []models.RankedResume {
	ranked := make([]models.RankedResume, 0, len(best))
	for _, m := range best {
		ranked = append(ranked, rankedResume(m, s.storedProfile(ctx, m.DocumentID)))
	}
	return ranked
}

// storedProfile resolves the profile for an indexed record.
func (s *Service) storedProfile(ctx context.Context, recordID string) profile.Profile {
	if s.catalog != nil {
		row, err := s.catalog.ByRecordID(ctx, recordID)
		if err == nil {
			return catalogProfile(row)
		}
		s.log.WithError(err).WithField("record_id", recordID).Debug("No cataloged profile, extracting from stored text")
	}

	doc, err := s.store.FetchDocument(ctx, recordID)
	if err != nil {
		s.log.WithError(err).WithField("record_id", recordID).Warn("Failed to fetch stored document for enrichment")
		return profile.Extract("")
	}
	return profile.Extract(doc.Text)
}

// catalogProfile converts a catalog row back into an extraction result.
func catalogProfile(row *models.CandidateProfile) profile.Profile {
	p := profile.Profile{
		Name:       row.Name,
		Skills:     []string{},
		Experience: row.Experience,
	}
	if len(row.Skills) > 0 {
		if err := json.Unmarshal(row.Skills, &p.Skills); err != nil {
			p.Skills = []string{}
		}
	}
	return p
}

func rankedResume(m matcher.SectionMatch, p profile.Profile) models.RankedResume {
	return models.RankedResume{
		Filename:        m.Filename,
		DocumentID:      m.DocumentID,
		SectionName:     m.SectionName,
		MatchPercentage: m.MatchPercentage,
		Name:            p.Name,
		Skills:          p.Skills,
		Experience:      p.Experience,
	}
}

// recordRun persists the outcome of a match request when history is enabled.
// History failures are logged, never surfaced.
func (s *Service) recordRun(ctx context.Context, jobText string, result *matcher.MatchResult, summary string) {
	if s.history == nil {
		return
	}

	top := make([]models.MatchRunEntry, 0, len(result.BestPerFile))
	for _, m := range result.BestPerFile {
		top = append(top, models.MatchRunEntry{
			Filename:        m.Filename,
			MatchPercentage: m.MatchPercentage,
		})
	}

	run := &models.MatchRun{
		JobExcerpt: excerpt(jobText, jobExcerptLength),
		MatchCount: len(result.Matches),
		Top:        top,
		Summary:    summary,
	}
	if err := s.history.InsertRun(ctx, run); err != nil {
		s.log.WithError(err).Warn("Failed to record match run")
	}
}

// publishEvent emits a run-level index event when events are enabled.
func (s *Service) publishEvent(ctx context.Context, entry *models.IndexLogEntry) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, entry); err != nil {
		s.log.WithError(err).Warn("Failed to publish index event")
	}
}

func emptyMatchResponse(message string) *models.MatchResponse {
	return &models.MatchResponse{
		Matches: []models.RankedResume{},
		Scores:  map[string]float64{},
		Summary: message,
	}
}

// excerpt truncates text to at most n runes for compact storage.
func excerpt(text string, n int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

// randomHex returns n random bytes hex-encoded, used to name the temporary
// collections of one uploaded-batch match.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
