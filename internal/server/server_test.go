package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"receiptlens/internal/common"
	"receiptlens/internal/export"
	"receiptlens/internal/extract"
	"receiptlens/internal/ocr"
	"receiptlens/internal/pipeline"
	"receiptlens/internal/receipts"
	"receiptlens/internal/repository"
	"receiptlens/internal/server"
)

type fixedRecognizer struct{ text string }

func (f fixedRecognizer) Recognize(_ context.Context, _ string) (ocr.Result, error) {
	return ocr.Result{Text: f.text, Method: "tesseract-ocr"}, nil
}

type fixedPostal struct{ city string }

func (f fixedPostal) DistrictForCode(_ context.Context, _ string) (string, error) {
	return f.city, nil
}

func newTestServer(t *testing.T, recognizedText string) *server.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo, err := repository.Open(context.Background(), common.DatabaseConfig{DSN: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	city := extract.NewCityResolver(fixedPostal{city: "Bengaluru"}, nil, nil, nil)
	proc := pipeline.NewProcessor(fixedRecognizer{text: recognizedText}, city, nil)
	store := receipts.NewService(repo, nil)
	exp := export.NewService(repo, nil)
	return server.NewServer(proc, store, exp, nil)
}

func uploadRequest(t *testing.T, userID, filename string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if userID != "" {
		require.NoError(t, w.WriteField("user_id", userID))
	}
	fw, err := w.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte("fake jpeg bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/receipts", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestServer_Healthz(t *testing.T) {
	srv := newTestServer(t, "")
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestServer_EchoesCallerRequestID(t *testing.T) {
	srv := newTestServer(t, "")
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "trace-123")
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	assert.Equal(t, "trace-123", rr.Header().Get("X-Request-ID"))
}

func TestServer_Upload_FullExtraction(t *testing.T) {
	srv := newTestServer(t, "Order delivered on March 5, 2:30 PM\nBill Total 200.50\nBengaluru 560001")

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, uploadRequest(t, "alice", "receipt.jpg"))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var rec struct {
		ID     string `json:"id"`
		UserID string `json:"user_id"`
		Amount string `json:"amount"`
		Date   string `json:"date"`
		City   string `json:"city"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "alice", rec.UserID)
	assert.Equal(t, "200.50", rec.Amount)
	assert.Equal(t, "March 5, 2:30 PM", rec.Date)
	assert.Equal(t, "Bengaluru", rec.City)

	// the upload is now queryable
	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/receipts?user_id=alice", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Receipts []json.RawMessage `json:"receipts"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Len(t, list.Receipts, 1)
}

func TestServer_Upload_MissingFields(t *testing.T) {
	srv := newTestServer(t, "Bill Total 200.50") // no date, no city

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, uploadRequest(t, "alice", "receipt.jpg"))
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	var resp struct {
		Missing []string `json:"missing"`
		Message string   `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, []string{"date", "city"}, resp.Missing)
	assert.Contains(t, resp.Message, "clearer image")
}

func TestServer_Upload_RequiresUserID(t *testing.T) {
	srv := newTestServer(t, "")
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, uploadRequest(t, "", "receipt.jpg"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestServer_Upload_RejectsUnsupportedExtension(t *testing.T) {
	srv := newTestServer(t, "")
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, uploadRequest(t, "alice", "receipt.pdf"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestServer_List_RequiresUserID(t *testing.T) {
	srv := newTestServer(t, "")
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/receipts", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestServer_Export(t *testing.T) {
	srv := newTestServer(t, "Order delivered on March 5, 2:30 PM\nBill Total 200.50\nBengaluru 560001")

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, uploadRequest(t, "alice", "receipt.jpg"))
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/receipts/export?user_id=alice", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "receipts.xlsx")
	assert.NotEmpty(t, rr.Body.Bytes())
}
