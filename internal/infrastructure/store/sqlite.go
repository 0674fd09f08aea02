package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vero/backend/internal/domain"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteRepository stores verification records in a local SQLite file
type SQLiteRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteRepository opens (and creates if needed) the database at path
func NewSQLiteRepository(path string, logger *zap.Logger) (*SQLiteRepository, error) {
	if path == "" {
		path = "./data/verifications.db"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	repo := &SQLiteRepository{
		db:     db,
		logger: logger,
	}

	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("SQLite repository initialized", zap.String("db_path", path))

	return repo, nil
}

// migrate creates one table per category
func (r *SQLiteRepository) migrate() error {
	for _, category := range []domain.Category{domain.CategoryDrug, domain.CategoryBaby} {
		table, err := collectionName(category)
		if err != nil {
			return err
		}

		schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id TEXT PRIMARY KEY,
			user_input TEXT NOT NULL,
			verdict TEXT NOT NULL,
			score REAL,
			reason TEXT,
			reference_url TEXT,
			created_at DATETIME NOT NULL,
			review_status TEXT NOT NULL DEFAULT 'pending'
		);

		CREATE INDEX IF NOT EXISTS idx_%[1]s_verdict ON %[1]s(verdict);
		CREATE INDEX IF NOT EXISTS idx_%[1]s_review_status ON %[1]s(review_status);
		`, table)

		if _, err := r.db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

// Insert appends a record to its category table
func (r *SQLiteRepository) Insert(ctx context.Context, record *domain.Record) error {
	table, err := collectionName(record.Category)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	userInput, err := json.Marshal(record.Submission)
	if err != nil {
		return fmt.Errorf("%w: failed to encode submission: %v", domain.ErrPersistence, err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (
			id, user_input, verdict, score, reason, reference_url, created_at, review_status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, table)

	var score sql.NullFloat64
	if record.Result.Score != nil {
		score = sql.NullFloat64{Float64: *record.Result.Score, Valid: true}
	}

	_, err = r.db.ExecContext(ctx, query,
		record.ID,
		string(userInput),
		string(record.Result.Verdict),
		score,
		record.Result.Reason,
		record.Result.ReferenceURL,
		record.Timestamp,
		string(record.ReviewStatus),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return nil
}

// Close closes the database
func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}
