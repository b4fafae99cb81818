package repository

import (
	"context"
	"log/slog"
	"strings"

	"receiptlens/internal/common"
)

// Open selects a store backend from the DSN: postgres:// URLs open a pgx
// pool, anything else is treated as a SQLite file path.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (ReceiptRepository, error) {
	if strings.HasPrefix(cfg.DSN, "postgres://") || strings.HasPrefix(cfg.DSN, "postgresql://") {
		return OpenPostgres(ctx, cfg, logger)
	}
	return OpenSQLite(ctx, cfg.DSN, logger)
}
