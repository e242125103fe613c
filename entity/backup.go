package entity

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var ErrBackupUnavailable = errors.New("backup unavailable")

// FileObject is a named blob inside an archive.
type FileObject struct {
	Name string
	Body []byte
}

// Backup is a finished catalog archive. Location is the object-storage URI
// when the archive was uploaded, empty otherwise.
type Backup struct {
	Name      string
	Location  string
	Body      []byte
	Voices    int
	CreatedAt time.Time
}

type BackupUsecase interface {
	Backup(ctx context.Context) (Backup, error)
}
