package archive

import (
	"context"
	"fmt"
	"io"

	"voice_relay/entity"
)

const traceName = "Archive"

type Archiver interface {
	Compress(ctx context.Context, fileObjects []entity.FileObject, buf io.Writer) error
	Extract(ctx context.Context, r io.Reader) ([]entity.FileObject, error)
	Ext() string
	ContentType() string
}

// New returns the archiver for a BACKUP_FORMAT value.
func New(format string) (Archiver, error) {
	switch format {
	case "tar":
		return NewTarArchiver(), nil
	case "tar.gz", "":
		return NewTarGzArchiver(), nil
	default:
		return nil, fmt.Errorf("unknown archive format %q", format)
	}
}
