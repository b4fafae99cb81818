package receipts

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"receiptlens/internal/entity"
	"receiptlens/internal/extract"
	"receiptlens/internal/ingest"
	"receiptlens/internal/repository"
)

// Service persists fully extracted records. It is the single write path used
// by both the HTTP boundary and the inbox workers.
type Service struct {
	repo   repository.ReceiptRepository
	logger *slog.Logger
}

func NewService(repo repository.ReceiptRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// SaveExtracted validates the record against the fields schema, hashes the
// source image, and stores the receipt keyed to the submitting user.
func (s *Service) SaveExtracted(ctx context.Context, userID, imagePath string, fields extract.Fields) (*entity.Receipt, error) {
	if err := extract.ValidateFields(fields); err != nil {
		return nil, fmt.Errorf("validate fields: %w", err)
	}

	hash, err := ingest.HashFile(imagePath)
	if err != nil {
		// the image was already processed; a hash failure should not lose
		// the extraction result
		s.logger.Warn("receipts.hash.failed", "path", imagePath, "error", err)
		hash = ""
	}

	rec := &entity.Receipt{
		UserID:      userID,
		Amount:      fields.Amount,
		Date:        fields.Date,
		City:        fields.City,
		ImagePath:   imagePath,
		ContentHash: hash,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save receipt: %w", err)
	}
	s.logger.Info("receipts.saved",
		"receipt_id", rec.ID,
		"user_id", userID,
		"amount", rec.Amount,
		"date", rec.Date,
		"city", rec.City,
	)
	return rec, nil
}

// ListByUser returns a user's stored receipts in creation order.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*entity.Receipt, error) {
	return s.repo.ListByUser(ctx, userID)
}
