package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongodb "ResuMatch/internal/database/mongo"
	"ResuMatch/internal/models"
)

// matchRunsCollection holds one document per recorded match request.
const matchRunsCollection = "match_runs"

const defaultHistoryLimit = 20

// HistoryStore defines the interface for match-run persistence.
type HistoryStore interface {
	InsertRun(ctx context.Context, run *models.MatchRun) error
	RecentRuns(ctx context.Context, limit int) ([]*models.MatchRun, error)
}

// MongoHistoryStore is an implementation of HistoryStore using MongoDB.
type MongoHistoryStore struct {
	collection *mongo.Collection
}

// NewMongoHistoryStore creates a history store on the client's database.
func NewMongoHistoryStore(client *mongodb.Client) (*MongoHistoryStore, error) {
	if client == nil || client.Mongo == nil {
		return nil, errors.New("mongodb client is not initialized")
	}
	return &MongoHistoryStore{
		collection: client.Collection(matchRunsCollection),
	}, nil
}

// InsertRun records a match run. A missing run id or timestamp is filled in.
func (s *MongoHistoryStore) InsertRun(ctx context.Context, run *models.MatchRun) error {
	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err := s.collection.InsertOne(ctx, run)
	return err
}

// RecentRuns returns the latest match runs, newest first.
func (s *MongoHistoryStore) RecentRuns(ctx context.Context, limit int) ([]*models.MatchRun, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	opts := options.Find()
	opts.SetSort(bson.D{{Key: "created_at", Value: -1}})
	opts.SetLimit(int64(limit))

	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	runs := make([]*models.MatchRun, 0, limit)
	if err = cursor.All(ctx, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}
