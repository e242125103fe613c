package s3repo

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice_relay/config"
	"voice_relay/entity"
)

type fakeS3 struct {
	mu          sync.Mutex
	method      string
	path        string
	contentType string
	body        []byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.method, f.path, f.contentType, f.body = r.Method, r.URL.Path, r.Header.Get("Content-Type"), body
	f.mu.Unlock()
	w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
	w.WriteHeader(http.StatusOK)
}

func TestS3Repository_UploadObject(t *testing.T) {
	fake := &fakeS3{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	repo, err := NewS3Repository(context.Background(), config.S3{
		Endpoint:  srv.URL,
		Region:    "us-east-1",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	})
	require.NoError(t, err)

	payload := []byte("archive-bytes")
	require.NoError(t, repo.UploadObject(context.Background(), entity.UploadObject{
		Bucket:      "relay",
		Key:         "backups/a.tar.gz",
		ContentType: "application/gzip",
		Body:        bytes.NewReader(payload),
	}))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, http.MethodPut, fake.method)
	assert.Equal(t, "/relay/backups/a.tar.gz", fake.path)
	assert.Equal(t, "application/gzip", fake.contentType)
	assert.Equal(t, payload, fake.body)
}

func TestS3Repository_UploadObjectError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>denied</Message></Error>`)
	}))
	defer srv.Close()

	repo, err := NewS3Repository(context.Background(), config.S3{
		Endpoint:  srv.URL,
		Region:    "us-east-1",
		AccessKey: "k",
		SecretKey: "s",
	})
	require.NoError(t, err)

	err = repo.UploadObject(context.Background(), entity.UploadObject{Bucket: "relay", Key: "x", Body: bytes.NewReader([]byte("x"))})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3://relay/x")
}
