package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"receiptlens/internal/repository"
)

// Service is a tiny façade over the repository that produces XLSX bytes for
// exports.
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

var headers = []string{"ID", "User", "Amount", "Date", "City", "Image", "Created At"}

// ExportReceiptsXLSX returns an XLSX workbook (as bytes) with one row per
// stored receipt for the given user.
func (s *Service) ExportReceiptsXLSX(ctx context.Context, userID string) ([]byte, error) {
	start := time.Now()

	recs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Receipts"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("new sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("set header: %w", err)
		}
	}

	for i, rec := range recs {
		row := []any{
			rec.ID.String(),
			rec.UserID,
			rec.Amount,
			rec.Date,
			rec.City,
			rec.ImagePath,
			rec.CreatedAt.UTC().Format(time.RFC3339),
		}
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("set cell: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"user_id", userID,
		"rows", len(recs),
		"bytes", buf.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
