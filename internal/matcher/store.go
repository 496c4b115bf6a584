package matcher

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"ResuMatch/internal/config"
	"ResuMatch/internal/database/milvus"
	"ResuMatch/pkg/logger"
)

// Schema fields shared by the document and section collections.
const (
	FieldID          = "id"
	FieldEmbedding   = "embedding"
	FieldDocumentID  = "document_id"
	FieldSectionName = "section_name"
	FieldFileName    = "file_name"
	FieldText        = "text"
)

const (
	maxIDLength       = 512
	maxFilenameLength = 512
	maxSectionLength  = 64
	maxTextLength     = 65535
)

// MilvusStore keeps document records in two Milvus collections: one row per
// document and one row per non-empty section. The section row id is the
// record id joined with the section name.
type MilvusStore struct {
	db        *milvus.Client
	documents string
	sections  string
	dim       int
	index     config.IndexConfig
	log       *logger.Logger
}

var (
	_ Store          = (*MilvusStore)(nil)
	_ EphemeralStore = (*MilvusStore)(nil)
)

// NewMilvusStore creates the adapter over an initialized Milvus client.
func NewMilvusStore(db *milvus.Client, collections config.CollectionsConfig, dim int, index config.IndexConfig, log *logger.Logger) (*MilvusStore, error) {
	if db == nil || db.Client == nil {
		return nil, fmt.Errorf("%w: milvus client is not initialized", ErrStoreUnavailable)
	}
	return &MilvusStore{
		db:        db,
		documents: collections.Documents,
		sections:  collections.Sections,
		dim:       dim,
		index:     index,
		log:       log,
	}, nil
}

// EnsureCollections creates, indexes and loads both collections. Existing
// collections are left untouched.
func (s *MilvusStore) EnsureCollections(ctx context.Context) error {
	docSchema := entity.NewSchema().
		WithName(s.documents).
		WithDescription("One row per indexed resume document").
		WithField(entity.NewField().WithName(FieldID).WithDataType(entity.FieldTypeVarChar).WithMaxLength(maxIDLength).WithIsPrimaryKey(true)).
		WithField(entity.NewField().WithName(FieldFileName).WithDataType(entity.FieldTypeVarChar).WithMaxLength(maxFilenameLength)).
		WithField(entity.NewField().WithName(FieldText).WithDataType(entity.FieldTypeVarChar).WithMaxLength(maxTextLength)).
		WithField(entity.NewField().WithName(FieldEmbedding).WithDataType(entity.FieldTypeFloatVector).WithDim(int64(s.dim)))

	if err := s.db.EnsureCollection(ctx, docSchema, FieldEmbedding, s.index); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	sectionSchema := entity.NewSchema().
		WithName(s.sections).
		WithDescription("One row per non-empty resume section").
		WithField(entity.NewField().WithName(FieldID).WithDataType(entity.FieldTypeVarChar).WithMaxLength(maxIDLength).WithIsPrimaryKey(true)).
		WithField(entity.NewField().WithName(FieldDocumentID).WithDataType(entity.FieldTypeVarChar).WithMaxLength(maxIDLength)).
		WithField(entity.NewField().WithName(FieldSectionName).WithDataType(entity.FieldTypeVarChar).WithMaxLength(maxSectionLength)).
		WithField(entity.NewField().WithName(FieldFileName).WithDataType(entity.FieldTypeVarChar).WithMaxLength(maxFilenameLength)).
		WithField(entity.NewField().WithName(FieldText).WithDataType(entity.FieldTypeVarChar).WithMaxLength(maxTextLength)).
		WithField(entity.NewField().WithName(FieldEmbedding).WithDataType(entity.FieldTypeFloatVector).WithDim(int64(s.dim)))

	if err := s.db.EnsureCollection(ctx, sectionSchema, FieldEmbedding, s.index); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return nil
}

// Upsert replaces all rows for the record's filename with the record's rows,
// document row first and the section rows in vocabulary order.
func (s *MilvusStore) Upsert(ctx context.Context, record *DocumentRecord) error {
	if err := s.DeleteByFilename(ctx, record.Filename); err != nil {
		return err
	}

	docColumns := []entity.Column{
		entity.NewColumnVarChar(FieldID, []string{record.ID}),
		entity.NewColumnVarChar(FieldFileName, []string{record.Filename}),
		entity.NewColumnVarChar(FieldText, []string{truncateText(record.FullText, maxTextLength)}),
		entity.NewColumnFloatVector(FieldEmbedding, s.dim, [][]float32{record.DocEmbedding}),
	}
	if _, err := s.db.Client.Insert(ctx, s.documents, "", docColumns...); err != nil {
		return fmt.Errorf("failed to insert document %s: %w", record.ID, err)
	}

	var (
		ids     []string
		docIDs  []string
		names   []string
		files   []string
		texts   []string
		vectors [][]float32
	)
	for _, name := range SectionNames {
		text, ok := record.Sections[name]
		if !ok {
			continue
		}
		vector, ok := record.SectionEmbeddings[name]
		if !ok {
			continue
		}
		ids = append(ids, SectionKey(record.ID, name))
		docIDs = append(docIDs, record.ID)
		names = append(names, name)
		files = append(files, record.Filename)
		texts = append(texts, truncateText(text, maxTextLength))
		vectors = append(vectors, vector)
	}
	if len(ids) == 0 {
		return nil
	}

	sectionColumns := []entity.Column{
		entity.NewColumnVarChar(FieldID, ids),
		entity.NewColumnVarChar(FieldDocumentID, docIDs),
		entity.NewColumnVarChar(FieldSectionName, names),
		entity.NewColumnVarChar(FieldFileName, files),
		entity.NewColumnVarChar(FieldText, texts),
		entity.NewColumnFloatVector(FieldEmbedding, s.dim, vectors),
	}
	if _, err := s.db.Client.Insert(ctx, s.sections, "", sectionColumns...); err != nil {
		return fmt.Errorf("failed to insert sections for %s: %w", record.ID, err)
	}

	s.log.WithFields(map[string]interface{}{
		"record_id": record.ID,
		"sections":  len(ids),
	}).Debug("upserted document record")

	return nil
}

// QuerySections runs a kNN search over the section collection and keeps the
// hits whose percentage reaches the similarity floor.
func (s *MilvusStore) QuerySections(ctx context.Context, embedding []float32, topK int, minSimilarity float64) ([]SectionMatch, error) {
	outputFields := []string{FieldDocumentID, FieldSectionName, FieldFileName, FieldText}

	searchResults, err := s.db.Client.Search(
		ctx, s.sections, []string{}, "", outputFields,
		[]entity.Vector{entity.FloatVector(embedding)},
		FieldEmbedding, entity.MetricType(s.index.MetricType), topK, s.searchParam(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search sections: %w", err)
	}

	floor := minSimilarity * 100
	var matches []SectionMatch
	for _, res := range searchResults {
		findColumn := func(name string) entity.Column {
			for _, field := range res.Fields {
				if field.Name() == name {
					return field
				}
			}
			return nil
		}

		docIDCol, ok := findColumn(FieldDocumentID).(*entity.ColumnVarChar)
		if !ok {
			s.log.Warn("search result is missing the document_id field, skipping")
			continue
		}
		nameCol, ok := findColumn(FieldSectionName).(*entity.ColumnVarChar)
		if !ok {
			s.log.Warn("search result is missing the section_name field, skipping")
			continue
		}
		fileCol, ok := findColumn(FieldFileName).(*entity.ColumnVarChar)
		if !ok {
			s.log.Warn("search result is missing the file_name field, skipping")
			continue
		}
		textCol, _ := findColumn(FieldText).(*entity.ColumnVarChar)

		docIDData := docIDCol.Data()
		nameData := nameCol.Data()
		fileData := fileCol.Data()
		var textData []string
		if textCol != nil {
			textData = textCol.Data()
		}

		for i := 0; i < res.ResultCount; i++ {
			distance := res.Scores[i]
			percentage := MatchPercentage(distance)
			if percentage < floor {
				continue
			}
			match := SectionMatch{
				DocumentID:      docIDData[i],
				SectionName:     nameData[i],
				Filename:        fileData[i],
				Distance:        distance,
				MatchPercentage: percentage,
			}
			if textData != nil {
				match.Text = textData[i]
			}
			matches = append(matches, match)
		}
	}

	return matches, nil
}

// FetchDocument looks up one document row by record id.
func (s *MilvusStore) FetchDocument(ctx context.Context, recordID string) (*StoredDocument, error) {
	expr := filterByField(FieldID, recordID)
	rs, err := s.db.Client.Query(ctx, s.documents, []string{}, expr, []string{FieldID, FieldFileName, FieldText, FieldEmbedding})
	if err != nil {
		return nil, fmt.Errorf("failed to query document %s: %w", recordID, err)
	}

	idCol, ok := rs.GetColumn(FieldID).(*entity.ColumnVarChar)
	if !ok || idCol.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, recordID)
	}

	doc := &StoredDocument{ID: idCol.Data()[0]}
	if fileCol, ok := rs.GetColumn(FieldFileName).(*entity.ColumnVarChar); ok && fileCol.Len() > 0 {
		doc.Filename = fileCol.Data()[0]
	}
	if textCol, ok := rs.GetColumn(FieldText).(*entity.ColumnVarChar); ok && textCol.Len() > 0 {
		doc.Text = textCol.Data()[0]
	}
	if embCol, ok := rs.GetColumn(FieldEmbedding).(*entity.ColumnFloatVector); ok && embCol.Len() > 0 {
		doc.Embedding = embCol.Data()[0]
	}

	return doc, nil
}

// DeleteByFilename purges all rows for a filename from both collections.
func (s *MilvusStore) DeleteByFilename(ctx context.Context, filename string) error {
	expr := filterByField(FieldFileName, filename)
	if err := s.db.Delete(ctx, s.documents, expr); err != nil {
		return fmt.Errorf("failed to delete documents for %s: %w", filename, err)
	}
	if err := s.db.Delete(ctx, s.sections, expr); err != nil {
		return fmt.Errorf("failed to delete sections for %s: %w", filename, err)
	}
	return nil
}

// CountDocuments reports the row count of the document collection. The count
// lags behind unflushed inserts.
func (s *MilvusStore) CountDocuments(ctx context.Context) (int64, error) {
	stats, err := s.db.Client.GetCollectionStatistics(ctx, s.documents)
	if err != nil {
		return 0, fmt.Errorf("failed to read collection statistics: %w", err)
	}
	count, err := strconv.ParseInt(stats["row_count"], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected row_count %q: %w", stats["row_count"], err)
	}
	return count, nil
}

// Flush persists pending writes in both collections.
func (s *MilvusStore) Flush(ctx context.Context) error {
	if err := s.db.Flush(ctx, s.documents); err != nil {
		return fmt.Errorf("failed to flush %s: %w", s.documents, err)
	}
	if err := s.db.Flush(ctx, s.sections); err != nil {
		return fmt.Errorf("failed to flush %s: %w", s.sections, err)
	}
	return nil
}

// DropCollections removes both collections. Used for the ephemeral
// collections backing uploaded-batch matching.
func (s *MilvusStore) DropCollections(ctx context.Context) error {
	if err := s.db.DropCollection(ctx, s.documents); err != nil {
		return fmt.Errorf("failed to drop %s: %w", s.documents, err)
	}
	if err := s.db.DropCollection(ctx, s.sections); err != nil {
		return fmt.Errorf("failed to drop %s: %w", s.sections, err)
	}
	return nil
}

// SectionKey builds the section row id from the record id and section name.
func SectionKey(recordID, sectionName string) string {
	return recordID + "_" + sectionName
}

// searchParam builds search parameters matching the configured index type.
func (s *MilvusStore) searchParam() entity.SearchParam {
	intParam := func(name string, def int) int {
		if raw, ok := s.index.Params[name]; ok {
			if v, ok := raw.(int); ok {
				return v
			}
		}
		return def
	}

	switch strings.ToUpper(s.index.IndexType) {
	case "HNSW":
		sp, err := entity.NewIndexHNSWSearchParam(intParam("ef", 64))
		if err == nil {
			return sp
		}
	case "IVF_SQ8":
		sp, err := entity.NewIndexIvfSQ8SearchParam(intParam("nprobe", 10))
		if err == nil {
			return sp
		}
	case "IVF_PQ":
		sp, err := entity.NewIndexIvfPQSearchParam(intParam("nprobe", 10))
		if err == nil {
			return sp
		}
	case "AUTOINDEX":
		sp, err := entity.NewIndexAUTOINDEXSearchParam(1)
		if err == nil {
			return sp
		}
	}

	sp, _ := entity.NewIndexIvfFlatSearchParam(intParam("nprobe", 10))
	return sp
}

// filterByField builds a Milvus filter expression matching one field value.
func filterByField(field, value string) string {
	return fmt.Sprintf(`%s == "%s"`, field, strings.ReplaceAll(value, `"`, `\"`))
}

// truncateText caps text at the collection's VarChar limit.
func truncateText(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
