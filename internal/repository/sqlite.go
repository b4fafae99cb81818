package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"receiptlens/internal/common"
	"receiptlens/internal/entity"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS receipts (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	amount TEXT NOT NULL,
	date TEXT NOT NULL,
	city TEXT NOT NULL,
	image_path TEXT NOT NULL,
	content_hash TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
)`

// sqliteRepository is the default, file-backed record store. modernc's
// driver is CGO-free, so the binary stays a single static artifact.
type sqliteRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (or creates) the SQLite store at path and ensures the
// receipts table exists. Use ":memory:" for tests.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (ReceiptRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// the driver serializes writes itself; one connection avoids
	// SQLITE_BUSY under concurrent workers
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	logger.Info("sqlite store ready", "path", path)
	return &sqliteRepository{db: db, logger: logger}, nil
}

func (r *sqliteRepository) Save(ctx context.Context, rec *entity.Receipt) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO receipts (id, user_id, amount, date, city, image_path, content_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.UserID, rec.Amount, rec.Date, rec.City,
		rec.ImagePath, rec.ContentHash, rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		r.logger.Error("failed to save receipt", "user_id", rec.UserID, "error", err)
		return common.WrapError(err, "insert receipt")
	}
	return nil
}

func (r *sqliteRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Receipt, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, amount, date, city, image_path, content_hash, created_at
		 FROM receipts WHERE user_id = ? ORDER BY created_at`,
		userID,
	)
	if err != nil {
		r.logger.Error("failed to list receipts", "user_id", userID, "error", err)
		return nil, common.WrapError(err, "query receipts")
	}
	defer rows.Close()

	var out []*entity.Receipt
	for rows.Next() {
		var rec entity.Receipt
		var id, createdAt string
		if err := rows.Scan(&id, &rec.UserID, &rec.Amount, &rec.Date, &rec.City,
			&rec.ImagePath, &rec.ContentHash, &createdAt); err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		rec.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse receipt id: %w", err)
		}
		rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (r *sqliteRepository) Close() error {
	return r.db.Close()
}
