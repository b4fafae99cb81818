package entity

import (
	"time"

	"github.com/google/uuid"
)

// Receipt is one persisted extraction result, keyed to the submitting user.
// Amount, Date and City are stored as extracted, not normalized.
type Receipt struct {
	ID          uuid.UUID `json:"id"`
	UserID      string    `json:"user_id"`
	Amount      string    `json:"amount"`
	Date        string    `json:"date"`
	City        string    `json:"city"`
	ImagePath   string    `json:"image_path"`
	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
