package store

import (
	"context"
	"fmt"

	"github.com/vero/backend/internal/domain"
	"go.uber.org/zap"
)

// Supported store types
const (
	TypeMongo  = "mongo"
	TypeSQLite = "sqlite"
)

// Config selects and configures the record store
type Config struct {
	Type       string
	URI        string
	Database   string
	SQLitePath string
}

// New opens the record store selected by cfg.Type
func New(ctx context.Context, cfg Config, logger *zap.Logger) (domain.VerificationRepository, error) {
	switch cfg.Type {
	case TypeMongo, "":
		return NewMongoRepository(ctx, cfg.URI, cfg.Database, logger)
	case TypeSQLite:
		return NewSQLiteRepository(cfg.SQLitePath, logger)
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Type)
	}
}

// collectionName returns the per-category collection or table name
func collectionName(category domain.Category) (string, error) {
	switch category {
	case domain.CategoryDrug:
		return "drug_verifications", nil
	case domain.CategoryBaby:
		return "baby_verifications", nil
	default:
		return "", fmt.Errorf("unknown category %q", category)
	}
}
