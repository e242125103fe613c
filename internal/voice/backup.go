package voice

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"voice_relay/config"
	"voice_relay/entity"
	"voice_relay/pkg/archive"
	"voice_relay/pkg/logger"
)

// Snapshotter is implemented by stores that can copy their whole database file.
type Snapshotter interface {
	Snapshot(ctx context.Context, w io.Writer) (int64, error)
}

type BackupUsecase struct {
	repo     entity.VoiceRepository
	snap     Snapshotter
	storage  entity.StorageRepository
	archiver archive.Archiver
	cfg      config.S3
	l        logger.Interface
	now      func() time.Time
}

var _ entity.BackupUsecase = (*BackupUsecase)(nil)

// NewBackupUsecase builds the backup flow. storage may be nil, in which case
// archives are only returned to the caller.
func NewBackupUsecase(repo entity.VoiceRepository, snap Snapshotter, storage entity.StorageRepository, archiver archive.Archiver, cfg config.S3, l logger.Interface) *BackupUsecase {
	return &BackupUsecase{
		repo:     repo,
		snap:     snap,
		storage:  storage,
		archiver: archiver,
		cfg:      cfg,
		l:        l,
		now:      time.Now,
	}
}

// Backup archives every record as voices.json, plus the raw database as
// voices.db when the store supports snapshots, and uploads the archive when
// object storage is configured.
func (b *BackupUsecase) Backup(ctx context.Context) (entity.Backup, error) {
	ctx, span := otel.Tracer(traceName).Start(ctx, "Backup")
	defer span.End()

	if b.archiver == nil {
		return entity.Backup{}, entity.ErrBackupUnavailable
	}

	voices, err := b.repo.List(ctx, 0, nil)
	if err != nil {
		return entity.Backup{}, errors.Wrap(err, "backup - list voices")
	}

	catalog, err := json.MarshalIndent(voices, "", "  ")
	if err != nil {
		return entity.Backup{}, errors.Wrap(err, "backup - marshal voices")
	}
	files := []entity.FileObject{{Name: "voices.json", Body: catalog}}

	if b.snap != nil {
		db := &bytes.Buffer{}
		if _, err := b.snap.Snapshot(ctx, db); err != nil {
			return entity.Backup{}, errors.Wrap(err, "backup - snapshot")
		}
		files = append(files, entity.FileObject{Name: "voices.db", Body: db.Bytes()})
	}

	out := &bytes.Buffer{}
	if err := b.archiver.Compress(ctx, files, out); err != nil {
		return entity.Backup{}, errors.Wrap(err, "backup - compress")
	}

	createdAt := b.now().UTC()
	result := entity.Backup{
		Name:      fmt.Sprintf("voice-relay-%s.%s", createdAt.Format("20060102T150405Z"), b.archiver.Ext()),
		Body:      out.Bytes(),
		Voices:    len(voices),
		CreatedAt: createdAt,
	}
	span.SetAttributes(attribute.Int("voices", result.Voices), attribute.Int("bytes", len(result.Body)))

	if b.storage == nil || b.cfg.Bucket == "" {
		return result, nil
	}

	key := b.cfg.Prefix + result.Name
	obj := entity.UploadObject{
		Bucket:      b.cfg.Bucket,
		Key:         key,
		ContentType: b.archiver.ContentType(),
		Body:        bytes.NewReader(result.Body),
	}
	if err := b.storage.UploadObject(ctx, obj); err != nil {
		return entity.Backup{}, errors.Wrap(err, "backup - upload")
	}
	result.Location = fmt.Sprintf("s3://%s/%s", b.cfg.Bucket, key)
	b.l.Info("backup - uploaded %d voices to %s", result.Voices, result.Location)

	return result, nil
}
