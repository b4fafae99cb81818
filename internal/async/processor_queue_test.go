package async_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"receiptlens/internal/async"
	"receiptlens/internal/common"
	"receiptlens/internal/extract"
	"receiptlens/internal/ocr"
	"receiptlens/internal/pipeline"
	"receiptlens/internal/receipts"
	"receiptlens/internal/repository"
)

type fixedRecognizer struct{ text string }

func (f fixedRecognizer) Recognize(_ context.Context, _ string) (ocr.Result, error) {
	return ocr.Result{Text: f.text, Method: "tesseract-ocr"}, nil
}

type fixedPostal struct{ city string }

func (f fixedPostal) DistrictForCode(_ context.Context, _ string) (string, error) {
	return f.city, nil
}

func newQueueFixture(t *testing.T, recognizedText string) (*async.ProcessorQueue, *receipts.Service) {
	t.Helper()
	repo, err := repository.Open(context.Background(), common.DatabaseConfig{DSN: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	city := extract.NewCityResolver(fixedPostal{city: "Bengaluru"}, nil, nil, nil)
	proc := pipeline.NewProcessor(fixedRecognizer{text: recognizedText}, city, nil)
	store := receipts.NewService(repo, nil)
	q := async.NewProcessorQueue(proc, store, nil,
		async.WithWorkers(2),
		async.WithQueueSize(8),
		async.WithProcessTimeout(10*time.Second),
	)
	return q, store
}

func TestProcessorQueue_ProcessesAndPersists(t *testing.T) {
	q, store := newQueueFixture(t, "Order delivered on March 5\nBill Total 200.50\n560001")
	ctx := context.Background()

	for _, p := range []string{"/inbox/a.jpg", "/inbox/b.jpg", "/inbox/c.jpg"} {
		require.NoError(t, q.Enqueue(ctx, async.Job{Path: p, UserID: "inbox", SubmittedAt: time.Now()}))
	}
	q.Shutdown(ctx)

	recs, err := store.ListByUser(ctx, "inbox")
	require.NoError(t, err)
	assert.Len(t, recs, 3)
	for _, rec := range recs {
		assert.Equal(t, "200.50", rec.Amount)
		assert.Equal(t, "Bengaluru", rec.City)
	}
}

func TestProcessorQueue_IncompleteExtractionNotPersisted(t *testing.T) {
	q, store := newQueueFixture(t, "Bill Total 200.50") // no date, no city
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, async.Job{Path: "/inbox/a.jpg", UserID: "inbox"}))
	q.Shutdown(ctx)

	recs, err := store.ListByUser(ctx, "inbox")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestProcessorQueue_EnqueueAfterShutdownIsNoop(t *testing.T) {
	q, store := newQueueFixture(t, "Order delivered on March 5\nBill Total 200.50\n560001")
	ctx := context.Background()

	q.Shutdown(ctx)
	require.NoError(t, q.Enqueue(ctx, async.Job{Path: "/inbox/late.jpg", UserID: "inbox"}))

	recs, err := store.ListByUser(ctx, "inbox")
	require.NoError(t, err)
	assert.Empty(t, recs)
}
