package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testS3Config(endpoint string) S3Config {
	return S3Config{
		Bucket:          "test-bucket",
		Region:          "us-east-1",
		Endpoint:        endpoint,
		AccessKeyID:     "test-access-key",
		SecretAccessKey: "test-secret-key",
	}
}

func TestNewS3Storage(t *testing.T) {
	cfg := testS3Config("http://localhost:4566") // LocalStack-like endpoint

	s, err := NewS3Storage(context.Background(), nil, cfg)
	require.NoError(t, err)

	assert.Equal(t, cfg.Bucket, s.bucket)
	assert.Equal(t, cfg.Region, s.region)
	assert.NotNil(t, s.LocalStorage)
}

func TestNewS3Storage_NotConfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  S3Config
	}{
		{name: "no bucket", cfg: S3Config{Region: "us-east-1"}},
		{name: "no region", cfg: S3Config{Bucket: "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewS3Storage(context.Background(), nil, tt.cfg)
			assert.ErrorIs(t, err, ErrS3NotConfigured)
		})
	}
}

func TestS3Storage_InheritsLocalStorage(t *testing.T) {
	s, err := NewS3Storage(context.Background(), NewLocalStorage(0), testS3Config("http://localhost:4566"))
	require.NoError(t, err)

	dst := filepath.Join(t.TempDir(), "out.uf2")
	staged, err := s.Stage(context.Background(), dst)
	require.NoError(t, err)
	_, err = staged.Write([]byte("test data"))
	require.NoError(t, err)
	require.NoError(t, staged.Commit())

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "test data", string(got))
}

func TestS3Storage_Publish_MockServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.True(t, strings.Contains(r.URL.Path, "/firmware/test-key"), "unexpected path: %s", r.URL.Path)
		assert.Equal(t, UF2ContentType, r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Equal(t, "test content", string(body))

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testS3Config(server.URL)
	cfg.Prefix = "firmware/"

	s, err := NewS3Storage(context.Background(), nil, cfg)
	require.NoError(t, err)

	url, err := s.Publish(context.Background(), "/test-key", bytes.NewReader([]byte("test content")))
	require.NoError(t, err)
	assert.Equal(t, "https://test-bucket.s3.us-east-1.amazonaws.com/firmware/test-key", url)
}

func TestS3Storage_Publish_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	s, err := NewS3Storage(context.Background(), nil, testS3Config(server.URL))
	require.NoError(t, err)

	_, err = s.Publish(context.Background(), "test-key", bytes.NewReader([]byte("x")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upload to S3")
}
