package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"receiptlens/internal/common"
	"receiptlens/internal/entity"

	"github.com/google/uuid"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS receipts (
	id UUID PRIMARY KEY,
	user_id TEXT NOT NULL,
	amount TEXT NOT NULL,
	date TEXT NOT NULL,
	city TEXT NOT NULL,
	image_path TEXT NOT NULL,
	content_hash TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
)`

// postgresRepository is the pgx-backed store for deployments that already
// run Postgres. Selected when DB_URL is a postgres:// DSN.
type postgresRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// OpenPostgres creates a pgx pool with the configured limits, pings it, and
// ensures the receipts table exists.
func OpenPostgres(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (ReceiptRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to database")

	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "receiptlens"

	dialCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(dialCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	logger.Info("postgres store ready")
	return &postgresRepository{pool: pool, logger: logger}, nil
}

func (r *postgresRepository) Save(ctx context.Context, rec *entity.Receipt) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO receipts (id, user_id, amount, date, city, image_path, content_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID.String(), rec.UserID, rec.Amount, rec.Date, rec.City,
		rec.ImagePath, rec.ContentHash, rec.CreatedAt,
	)
	if err != nil {
		r.logger.Error("failed to save receipt", "user_id", rec.UserID, "error", err)
		return common.WrapError(err, "insert receipt")
	}
	return nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Receipt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, amount, date, city, image_path, content_hash, created_at
		 FROM receipts WHERE user_id = $1 ORDER BY created_at`,
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
		var id string
		if err := rows.Scan(&id, &rec.UserID, &rec.Amount, &rec.Date, &rec.City,
			&rec.ImagePath, &rec.ContentHash, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		rec.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse receipt id: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (r *postgresRepository) Close() error {
	r.pool.Close()
	return nil
}
