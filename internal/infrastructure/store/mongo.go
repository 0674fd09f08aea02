package store

import (
	"context"
	"fmt"
	"time"

	"github.com/vero/backend/internal/domain"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const (
	defaultDatabase = "VeriTrue"
	connectTimeout  = 10 * time.Second
)

// MongoRepository stores verification records in one collection per category
type MongoRepository struct {
	client   *mongo.Client
	database *mongo.Database
	logger   *zap.Logger
}

// reviewDocument mirrors the review sub-document read by the manual review tooling
type reviewDocument struct {
	Status domain.ReviewStatus `bson:"status"`
}

type recordDocument struct {
	ID                 string                    `bson:"_id"`
	UserInput          domain.Submission         `bson:"user_input"`
	VerificationResult domain.VerificationResult `bson:"verification_result"`
	Timestamp          time.Time                 `bson:"timestamp"`
	Verified           reviewDocument            `bson:"verified"`
}

// NewMongoRepository connects to MongoDB and verifies the connection
func NewMongoRepository(ctx context.Context, uri, database string, logger *zap.Logger) (*MongoRepository, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongodb uri is required")
	}
	if database == "" {
		database = defaultDatabase
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	logger.Info("Mongo repository initialized", zap.String("database", database))

	return &MongoRepository{
		client:   client,
		database: client.Database(database),
		logger:   logger,
	}, nil
}

// Insert appends a record to its category collection
func (r *MongoRepository) Insert(ctx context.Context, record *domain.Record) error {
	name, err := collectionName(record.Category)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	if _, err := r.database.Collection(name).InsertOne(ctx, toDocument(record)); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return nil
}

// Close disconnects from MongoDB
func (r *MongoRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func toDocument(record *domain.Record) recordDocument {
	return recordDocument{
		ID:                 record.ID,
		UserInput:          record.Submission,
		VerificationResult: record.Result,
		Timestamp:          record.Timestamp,
		Verified:           reviewDocument{Status: record.ReviewStatus},
	}
}
