package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload_Success(t *testing.T) {
	var gotPath, gotContentType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewImageClient(srv.URL+"/bucket", "https://cdn.example.com/bucket")

	url, err := client.Upload(context.Background(), "products/1/kopi.png", "image/png", []byte("fake-png"))
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/bucket/products/1/kopi.png", url)
	assert.Equal(t, "/bucket/products/1/kopi.png", gotPath)
	assert.Equal(t, "image/png", gotContentType)
	assert.Equal(t, []byte("fake-png"), gotBody)
}

func TestUpload_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewImageClient(srv.URL, "https://cdn.example.com")

	_, err := client.Upload(context.Background(), "a.png", "image/png", nil)
	assert.Error(t, err)
}

func TestUpload_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewImageClient(srv.URL, "https://cdn.example.com")

	for i := 0; i < 3; i++ {
		_, err := client.Upload(context.Background(), "a.png", "image/png", nil)
		require.Error(t, err)
	}
	assert.Equal(t, 3, hits)

	// breaker is open now: the request never reaches the server
	_, err := client.Upload(context.Background(), "a.png", "image/png", nil)
	require.Error(t, err)
	assert.Equal(t, 3, hits)
}
