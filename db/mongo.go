package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AlexCSalinas/r-UofM-Ranked/models"
)

const (
	snapshotCollection = "daily_stats"
	connectTimeout     = 10 * time.Second
)

// StoreError marks a persistence failure, as opposed to a legitimately
// empty query result.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("snapshot store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// SnapshotStore persists one snapshot document per subreddit per calendar
// day in MongoDB.
type SnapshotStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	log        *logrus.Logger
}

// NewSnapshotStore connects to MongoDB and verifies the connection.
func NewSnapshotStore(ctx context.Context, uri, databaseName string, log *logrus.Logger) (*SnapshotStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.WithField("database", databaseName).Info("Connected to MongoDB")

	return &SnapshotStore{
		client:     client,
		collection: client.Database(databaseName).Collection(snapshotCollection),
		log:        log,
	}, nil
}

// Close disconnects from MongoDB.
func (s *SnapshotStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// FindLatest returns the most recent snapshot for a subreddit, or nil when
// no snapshot exists yet.
func (s *SnapshotStore) FindLatest(ctx context.Context, subreddit string) (*models.Snapshot, error) {
	filter := bson.M{"subreddit": subreddit}
	opts := options.FindOne().SetSort(bson.D{{Key: "date", Value: -1}})

	var snapshot models.Snapshot
	err := s.collection.FindOne(ctx, filter, opts).Decode(&snapshot)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, &StoreError{Op: "find latest", Err: err}
	}

	return &snapshot, nil
}

// FindRecentContaining returns up to maxCount snapshots for a subreddit
// that rank the given user, most recent first.
func (s *SnapshotStore) FindRecentContaining(ctx context.Context, subreddit, username string, maxCount int) ([]models.Snapshot, error) {
	filter := bson.M{
		"subreddit":                subreddit,
		"contributors." + username: bson.M{"$exists": true},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetLimit(int64(maxCount))

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, &StoreError{Op: "find recent", Err: err}
	}
	defer cursor.Close(ctx)

	snapshots := make([]models.Snapshot, 0, maxCount)
	if err := cursor.All(ctx, &snapshots); err != nil {
		return nil, &StoreError{Op: "decode recent", Err: err}
	}

	return snapshots, nil
}

// Upsert writes the snapshot for its calendar day, replacing any snapshot
// already written for the same subreddit and day. A second run on the same
// date is last-writer-wins.
func (s *SnapshotStore) Upsert(ctx context.Context, dateKey string, snapshot *models.Snapshot) error {
	filter := bson.M{
		"date_key":  dateKey,
		"subreddit": snapshot.Subreddit,
	}
	update := bson.M{"$set": snapshot}
	opts := options.Update().SetUpsert(true)

	result, err := s.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return &StoreError{Op: "upsert", Err: err}
	}

	s.log.WithFields(logrus.Fields{
		"subreddit": snapshot.Subreddit,
		"date_key":  dateKey,
		"inserted":  result.UpsertedCount > 0,
	}).Debug("Snapshot written")

	return nil
}
