package entity

import (
	"context"
	"io"
)

// AudioConverter re-encodes arbitrary audio into an OGG/Opus voice note.
type AudioConverter interface {
	ConvertToVoice(ctx context.Context, r io.Reader, w io.Writer) error
}
