package archive

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"io"
	"time"

	"go.opentelemetry.io/otel"

	"voice_relay/entity"
)

type TarGzArchiver struct {
	now func() time.Time
}

func NewTarGzArchiver() Archiver {
	return &TarGzArchiver{now: time.Now}
}

func (gz *TarGzArchiver) Ext() string { return "tar.gz" }

func (gz *TarGzArchiver) ContentType() string { return "application/gzip" }

func (gz *TarGzArchiver) Compress(ctx context.Context, fileObjects []entity.FileObject, buf io.Writer) error {
	_, span := otel.Tracer(traceName).Start(ctx, "compress - tar gz")
	defer span.End()

	gw := gzip.NewWriter(buf)
	tw := tar.NewWriter(gw)

	if err := writeEntries(tw, fileObjects, gz.now()); err != nil {
		return err
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return gw.Close()
}

func (gz *TarGzArchiver) Extract(ctx context.Context, buf io.Reader) ([]entity.FileObject, error) {
	_, span := otel.Tracer(traceName).Start(ctx, "extract - tar gz")
	defer span.End()

	gr, err := gzip.NewReader(buf)
	if err != nil {
		return nil, err
	}
	defer gr.Close()

	return readEntries(tar.NewReader(gr))
}
