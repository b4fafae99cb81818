package repository

import (
	"context"

	"receiptlens/internal/entity"
)

// ReceiptRepository is the persistence boundary for extraction results.
type ReceiptRepository interface {
	Save(ctx context.Context, rec *entity.Receipt) error
	ListByUser(ctx context.Context, userID string) ([]*entity.Receipt, error)
	Close() error
}

