package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ayurwell/portal/internal/infrastructure/config"
)

type recordedCall struct {
	method      string
	path        string
	contentType string
	body        string
}

// fakeS3 answers the handful of S3 calls the store makes
type fakeS3 struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{
		method:      r.Method,
		path:        r.URL.Path,
		contentType: r.Header.Get("Content-Type"),
		body:        string(body),
	})
	f.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusOK)
	}
}

func newTestStore(t *testing.T, publicBase string) (*S3Store, *fakeS3) {
	t.Helper()
	fake := &fakeS3{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	store, err := NewS3Store(config.StorageConfig{
		Provider:        "s3",
		Bucket:          "avatars",
		Region:          "us-east-1",
		Endpoint:        srv.URL,
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		ForcePathStyle:  true,
		PublicBaseURL:   publicBase,
	}, zap.NewNop())
	require.NoError(t, err)
	return store, fake
}

func TestNewS3Store_RequiresBucket(t *testing.T) {
	_, err := NewS3Store(config.StorageConfig{Region: "us-east-1"}, zap.NewNop())

	assert.Error(t, err)
}

func TestS3Store_Upload(t *testing.T) {
	// Arrange
	store, fake := newTestStore(t, "https://cdn.ayurwell.test/")

	// Act
	url, err := store.Upload(context.Background(), "avatars/u1/a.png", []byte("png-bytes"), "image/png")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.ayurwell.test/avatars/u1/a.png", url)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Len(t, fake.calls, 1)
	assert.Equal(t, http.MethodPut, fake.calls[0].method)
	assert.Equal(t, "/avatars/avatars/u1/a.png", fake.calls[0].path)
	assert.Equal(t, "image/png", fake.calls[0].contentType)
	assert.Equal(t, "png-bytes", fake.calls[0].body)
}

func TestS3Store_UploadWithoutPublicBaseUsesLocation(t *testing.T) {
	store, _ := newTestStore(t, "")

	url, err := store.Upload(context.Background(), "avatars/u1/b.jpg", []byte("jpeg"), "image/jpeg")

	require.NoError(t, err)
	assert.Contains(t, url, "/avatars/avatars/u1/b.jpg")
}

func TestS3Store_Delete(t *testing.T) {
	store, fake := newTestStore(t, "")

	err := store.Delete(context.Background(), "avatars/u1/a.png")

	require.NoError(t, err)
	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Len(t, fake.calls, 1)
	assert.Equal(t, http.MethodDelete, fake.calls[0].method)
	assert.Equal(t, "/avatars/avatars/u1/a.png", fake.calls[0].path)
}
