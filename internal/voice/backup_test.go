package voice

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice_relay/config"
	"voice_relay/entity"
	"voice_relay/pkg/archive"
	"voice_relay/pkg/logger"
)

func seeded(t *testing.T) *memRepo {
	t.Helper()
	repo := newMemRepo()
	require.NoError(t, repo.Put(context.Background(), entity.Voice{FileID: "a", Title: "one"}))
	require.NoError(t, repo.Put(context.Background(), entity.Voice{FileID: "b", Title: "two"}))
	return repo
}

func fixedClock(b *BackupUsecase) {
	b.now = func() time.Time { return time.Date(2024, 7, 9, 8, 30, 15, 0, time.UTC) }
}

func TestBackupUsecase_Upload(t *testing.T) {
	repo := seeded(t)
	storage := &memStorage{}
	cfg := config.S3{Bucket: "relay-backups", Prefix: "backups/"}
	a := archive.NewTarGzArchiver()

	b := NewBackupUsecase(repo, repo, storage, a, cfg, logger.NewWithWriter("error", io.Discard))
	fixedClock(b)

	res, err := b.Backup(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "voice-relay-20240709T083015Z.tar.gz", res.Name)
	assert.Equal(t, "s3://relay-backups/backups/voice-relay-20240709T083015Z.tar.gz", res.Location)
	assert.Equal(t, 2, res.Voices)
	assert.Equal(t, "relay-backups", storage.bucket)
	assert.Equal(t, "backups/"+res.Name, storage.key)
	assert.Equal(t, "application/gzip", storage.contentType)
	assert.Equal(t, res.Body, storage.body)

	files, err := a.Extract(context.Background(), bytes.NewReader(res.Body))
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "voices.json", files[0].Name)
	assert.Equal(t, "voices.db", files[1].Name)
	assert.Equal(t, "bolt-snapshot", string(files[1].Body))

	var voices []entity.Voice
	require.NoError(t, json.Unmarshal(files[0].Body, &voices))
	require.Len(t, voices, 2)
	assert.Equal(t, "one", voices[0].Title)
}

func TestBackupUsecase_WithoutStorage(t *testing.T) {
	repo := seeded(t)
	b := NewBackupUsecase(repo, nil, nil, archive.NewTarArchiver(), config.S3{}, logger.NewWithWriter("error", io.Discard))
	fixedClock(b)

	res, err := b.Backup(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Location)
	assert.True(t, strings.HasSuffix(res.Name, ".tar"))

	files, err := archive.NewTarArchiver().Extract(context.Background(), bytes.NewReader(res.Body))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "voices.json", files[0].Name)
}

func TestBackupUsecase_UploadError(t *testing.T) {
	repo := seeded(t)
	storage := &memStorage{err: errors.New("access denied")}
	b := NewBackupUsecase(repo, repo, storage, archive.NewTarGzArchiver(), config.S3{Bucket: "b"}, logger.NewWithWriter("error", io.Discard))

	_, err := b.Backup(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestBackupUsecase_NoArchiver(t *testing.T) {
	b := NewBackupUsecase(newMemRepo(), nil, nil, nil, config.S3{}, logger.NewWithWriter("error", io.Discard))

	_, err := b.Backup(context.Background())
	assert.ErrorIs(t, err, entity.ErrBackupUnavailable)
}
