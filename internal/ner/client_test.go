package ner_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"receiptlens/internal/ner"
)

func TestClient_Recognize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer hf-test-token", r.Header.Get("Authorization"))

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Zepto order Mumbai 400001", payload["inputs"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"entity_group":"ORG","word":"Zepto","score":0.97},
			{"entity_group":"LOC","word":"Mumbai","score":0.99}
		]`))
	}))
	defer srv.Close()

	c := ner.NewClient("ner-primary", srv.URL, "hf-test-token", 2*time.Second, nil)
	ents, err := c.Recognize(context.Background(), "Zepto order Mumbai 400001")
	require.NoError(t, err)
	require.Len(t, ents, 2)
	assert.Equal(t, "Zepto", ents[0].Word)
	assert.Equal(t, "ORG", ents[0].Group)
	assert.Equal(t, "Mumbai", ents[1].Word)
	assert.Equal(t, "LOC", ents[1].Group)
	assert.InDelta(t, 0.99, ents[1].Score, 0.001)
}

func TestClient_NoTokenOmitsAuthHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := ner.NewClient("ner-secondary", srv.URL, "", 2*time.Second, nil)
	ents, err := c.Recognize(context.Background(), "text")
	require.NoError(t, err)
	assert.Empty(t, ents)
}

func TestClient_ServerErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable) // model cold start
	}))
	defer srv.Close()

	c := ner.NewClient("ner-primary", srv.URL, "", 2*time.Second, nil)
	_, err := c.Recognize(context.Background(), "text")
	require.Error(t, err)
}

func TestIsLocation(t *testing.T) {
	assert.True(t, ner.IsLocation("LOC"))
	assert.True(t, ner.IsLocation("GPE"))
	assert.False(t, ner.IsLocation("ORG"))
	assert.False(t, ner.IsLocation("PER"))
	assert.False(t, ner.IsLocation(""))
}
