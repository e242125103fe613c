package archive

import (
	"archive/tar"
	"context"
	"io"
	"time"

	"go.opentelemetry.io/otel"

	"voice_relay/entity"
)

type TarArchiver struct {
	now func() time.Time
}

func NewTarArchiver() Archiver {
	return &TarArchiver{now: time.Now}
}

func (ta *TarArchiver) Ext() string { return "tar" }

func (ta *TarArchiver) ContentType() string { return "application/x-tar" }

func (ta *TarArchiver) Compress(ctx context.Context, fileObjects []entity.FileObject, buf io.Writer) error {
	_, span := otel.Tracer(traceName).Start(ctx, "compress - tar")
	defer span.End()

	tw := tar.NewWriter(buf)
	if err := writeEntries(tw, fileObjects, ta.now()); err != nil {
		return err
	}
	return tw.Close()
}

func (ta *TarArchiver) Extract(ctx context.Context, buf io.Reader) ([]entity.FileObject, error) {
	_, span := otel.Tracer(traceName).Start(ctx, "extract - tar")
	defer span.End()

	return readEntries(tar.NewReader(buf))
}

func writeEntries(tw *tar.Writer, fileObjects []entity.FileObject, modTime time.Time) error {
	for _, fileObject := range fileObjects {
		hdr := &tar.Header{
			Name:    fileObject.Name,
			Mode:    int64(0600),
			Size:    int64(len(fileObject.Body)),
			ModTime: modTime,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if _, err := tw.Write(fileObject.Body); err != nil {
			return err
		}
	}
	return nil
}

func readEntries(tr *tar.Reader) ([]entity.FileObject, error) {
	var extractedFiles []entity.FileObject
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		fileBody, err := io.ReadAll(tr)
		if err != nil {
			return nil, err
		}

		extractedFiles = append(extractedFiles, entity.FileObject{Name: hdr.Name, Body: fileBody})
	}
	return extractedFiles, nil
}
