package async

import (
	"context"
	"time"
)

// Job is one receipt image queued for extraction. Inbox drops have no
// submitting chat user, so UserID defaults to the inbox owner.
type Job struct {
	Path        string
	UserID      string
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
