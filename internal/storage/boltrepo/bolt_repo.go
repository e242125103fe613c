package boltrepo

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"voice_relay/config"
	"voice_relay/entity"
)

const traceName = "Bolt-Repo"

var gzipMagic = []byte{0x1f, 0x8b}

// VoiceRepository keeps voices in a single bbolt bucket keyed by file id.
type VoiceRepository struct {
	db       *bolt.DB
	bucket   []byte
	compress bool
}

var _ entity.VoiceRepository = (*VoiceRepository)(nil)

func NewVoiceRepository(cfg config.DB) (*VoiceRepository, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create database directory")
		}
	}

	db, err := bolt.Open(cfg.Path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", cfg.Path)
	}

	bucket := []byte(cfg.Bucket)
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create bucket")
	}

	return &VoiceRepository{db: db, bucket: bucket, compress: cfg.Compression}, nil
}

func (r *VoiceRepository) Put(ctx context.Context, v entity.Voice) error {
	_, span := otel.Tracer(traceName).Start(ctx, "Put")
	defer span.End()
	span.SetAttributes(attribute.String("file_id", v.FileID))

	if v.FileID == "" {
		return entity.ErrEmptyFileID
	}

	value, err := r.encode(v)
	if err != nil {
		return err
	}

	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(r.bucket).Put([]byte(v.FileID), value)
	})
}

func (r *VoiceRepository) Get(ctx context.Context, fileID string) (entity.Voice, error) {
	_, span := otel.Tracer(traceName).Start(ctx, "Get")
	defer span.End()
	span.SetAttributes(attribute.String("file_id", fileID))

	if fileID == "" {
		return entity.Voice{}, entity.ErrEmptyFileID
	}

	var v entity.Voice
	err := r.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(r.bucket).Get([]byte(fileID))
		if value == nil {
			return entity.ErrVoiceNotFound
		}
		var err error
		v, err = decode(value)
		return err
	})
	return v, err
}

func (r *VoiceRepository) Delete(ctx context.Context, fileID string) error {
	_, span := otel.Tracer(traceName).Start(ctx, "Delete")
	defer span.End()
	span.SetAttributes(attribute.String("file_id", fileID))

	if fileID == "" {
		return entity.ErrEmptyFileID
	}

	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(r.bucket)
		if b.Get([]byte(fileID)) == nil {
			return entity.ErrVoiceNotFound
		}
		return b.Delete([]byte(fileID))
	})
}

// List walks the bucket in key order and stops after limit matches; limit <= 0 means no limit.
func (r *VoiceRepository) List(ctx context.Context, limit int, filter entity.VoiceFilter) ([]entity.Voice, error) {
	_, span := otel.Tracer(traceName).Start(ctx, "List")
	defer span.End()
	span.SetAttributes(attribute.Int("limit", limit))

	voices := make([]entity.Voice, 0)
	err := r.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(r.bucket).Cursor()
		for k, value := c.First(); k != nil; k, value = c.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := decode(value)
			if err != nil {
				return errors.Wrapf(err, "key %q", k)
			}
			if filter != nil && !filter(v) {
				continue
			}
			voices = append(voices, v)
			if limit > 0 && len(voices) >= limit {
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("found", len(voices)))
	return voices, nil
}

func (r *VoiceRepository) Count(ctx context.Context) (int, error) {
	_, span := otel.Tracer(traceName).Start(ctx, "Count")
	defer span.End()

	var n int
	err := r.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(r.bucket).Stats().KeyN
		return nil
	})
	return n, err
}

// Snapshot writes a consistent copy of the whole database file to w.
func (r *VoiceRepository) Snapshot(ctx context.Context, w io.Writer) (int64, error) {
	_, span := otel.Tracer(traceName).Start(ctx, "Snapshot")
	defer span.End()

	var n int64
	err := r.db.View(func(tx *bolt.Tx) error {
		var err error
		n, err = tx.WriteTo(w)
		return err
	})
	return n, err
}

// Ping checks the database is open and the bucket exists.
func (r *VoiceRepository) Ping(ctx context.Context) error {
	return r.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(r.bucket) == nil {
			return errors.Errorf("bucket %q is missing", r.bucket)
		}
		return nil
	})
}

func (r *VoiceRepository) Close() error {
	return r.db.Close()
}

func (r *VoiceRepository) encode(v entity.Voice) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "marshal voice")
	}
	if !r.compress {
		return body, nil
	}

	buf := &bytes.Buffer{}
	gw := gzip.NewWriter(buf)
	if _, err := gw.Write(body); err != nil {
		return nil, errors.Wrap(err, "compress voice")
	}
	if err := gw.Close(); err != nil {
		return nil, errors.Wrap(err, "compress voice")
	}
	return buf.Bytes(), nil
}

// decode accepts both compressed and plain values so the compression setting
// can change on an existing database.
func decode(value []byte) (entity.Voice, error) {
	var v entity.Voice

	body := value
	if bytes.HasPrefix(value, gzipMagic) {
		gr, err := gzip.NewReader(bytes.NewReader(value))
		if err != nil {
			return v, errors.Wrap(err, "decompress voice")
		}
		defer gr.Close()
		body, err = io.ReadAll(gr)
		if err != nil {
			return v, errors.Wrap(err, "decompress voice")
		}
	}

	if err := json.Unmarshal(body, &v); err != nil {
		return v, errors.Wrap(err, "unmarshal voice")
	}
	return v, nil
}
