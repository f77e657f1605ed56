package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/attractify/onboarding/internal/infrastructure/config"
)

func testStorageConfig(endpoint string) *config.StorageConfig {
	return &config.StorageConfig{
		Enabled:         true,
		Endpoint:        endpoint,
		Region:          "eu-west-1",
		Bucket:          "recordings",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		UsePathStyle:    true,
		PresignExpiry:   10 * time.Minute,
	}
}

func TestNewS3AssetStorage_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.StorageConfig)
		wantErr string
	}{
		{"missing bucket", func(c *config.StorageConfig) { c.Bucket = "" }, "bucket is required"},
		{"missing access key", func(c *config.StorageConfig) { c.AccessKeyID = "" }, "access key id is required"},
		{"missing secret", func(c *config.StorageConfig) { c.SecretAccessKey = "" }, "secret access key is required"},
		{"bad endpoint", func(c *config.StorageConfig) { c.Endpoint = "http://" }, "invalid storage endpoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testStorageConfig("http://localhost:9000")
			tt.mutate(cfg)
			_, err := NewS3AssetStorage(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("nil config", func(t *testing.T) {
		_, err := NewS3AssetStorage(nil)
		assert.EqualError(t, err, "storage configuration is required")
	})
}

func TestNormalizeEndpoint(t *testing.T) {
	got, err := normalizeEndpoint("")
	require.NoError(t, err)
	assert.Empty(t, got, "empty endpoint targets AWS")

	got, err = normalizeEndpoint("minio.internal:9000/")
	require.NoError(t, err)
	assert.Equal(t, "https://minio.internal:9000", got)

	got, err = normalizeEndpoint("http://localhost:9000")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", got)
}

func TestS3AssetStorage_Options(t *testing.T) {
	cfg := testStorageConfig("http://localhost:9000")
	cfg.PresignExpiry = 0

	s, err := NewS3AssetStorage(cfg)
	require.NoError(t, err)
	assert.Equal(t, defaultPresignExpiry, s.expiry)
	assert.Equal(t, "recordings", s.Bucket())

	s, err = NewS3AssetStorage(cfg, WithPresignExpiry(time.Hour), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, s.expiry)
}

func TestS3AssetStorage_PresignPut(t *testing.T) {
	issued := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	s, err := NewS3AssetStorage(testStorageConfig("http://localhost:9000"),
		WithClock(func() time.Time { return issued }))
	require.NoError(t, err)

	t.Run("empty key", func(t *testing.T) {
		_, _, err := s.PresignPut(context.Background(), "", "video/mp4")
		assert.EqualError(t, err, "storage key is required")
	})

	t.Run("signed path-style URL", func(t *testing.T) {
		raw, expiresAt, err := s.PresignPut(context.Background(), "recordings/c1/s1/demo.mp4", "video/mp4")
		require.NoError(t, err)
		assert.Equal(t, issued.Add(10*time.Minute), expiresAt)

		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, "localhost:9000", u.Host)
		assert.Equal(t, "/recordings/recordings/c1/s1/demo.mp4", u.Path)

		q := u.Query()
		assert.Equal(t, "600", q.Get("X-Amz-Expires"))
		assert.Equal(t, "AWS4-HMAC-SHA256", q.Get("X-Amz-Algorithm"))
		assert.True(t, strings.HasPrefix(q.Get("X-Amz-Credential"), "test-key/"))
		assert.Contains(t, q.Get("X-Amz-Credential"), "/eu-west-1/s3/")
		assert.Contains(t, q.Get("X-Amz-SignedHeaders"), "host")
	})
}

func TestS3AssetStorage_ObjectExists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if r.URL.Path == "/recordings/present.mp4" {
			w.Header().Set("Content-Length", "0")
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s, err := NewS3AssetStorage(testStorageConfig(srv.URL))
	require.NoError(t, err)
	ctx := context.Background()

	exists, err := s.ObjectExists(ctx, "present.mp4")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.ObjectExists(ctx, "missing.mp4")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = s.ObjectExists(ctx, "")
	assert.EqualError(t, err, "storage key is required")
}

func TestS3AssetStorage_EnsureBucket_Existing(t *testing.T) {
	var created bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			created = true
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s, err := NewS3AssetStorage(testStorageConfig(srv.URL))
	require.NoError(t, err)
	require.NoError(t, s.EnsureBucket(context.Background()))
	assert.False(t, created)
}

func TestS3AssetStorage_EnsureBucket_Creates(t *testing.T) {
	var created bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodHead:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			created = r.URL.Path == "/recordings"
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer srv.Close()

	s, err := NewS3AssetStorage(testStorageConfig(srv.URL))
	require.NoError(t, err)
	require.NoError(t, s.EnsureBucket(context.Background()))
	assert.True(t, created)
}
