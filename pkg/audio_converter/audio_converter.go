package audio_converter

import (
	"context"
	"io"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.opentelemetry.io/otel"
)

const traceName = "Audio-Converter"

// AudioConverter shells out to ffmpeg; the binary must be on PATH.
type AudioConverter struct {
	bitrate string
}

func NewAudioConverter() *AudioConverter {
	return &AudioConverter{bitrate: "48k"}
}

// OutputArgs are the ffmpeg output options for a Telegram voice note: mono
// Opus in an OGG container.
func (ac *AudioConverter) OutputArgs() ffmpeg.KwArgs {
	return ffmpeg.KwArgs{
		"f":   "ogg",
		"c:a": "libopus",
		"b:a": ac.bitrate,
		"ac":  1,
		"map": "0:a:0",
	}
}

// ConvertToVoice reads any ffmpeg-readable audio from inputAudio and writes OGG/Opus to outputAudio.
func (ac *AudioConverter) ConvertToVoice(ctx context.Context, inputAudio io.Reader, outputAudio io.Writer) error {
	_, span := otel.Tracer(traceName).Start(ctx, "ConvertToVoice")
	defer span.End()

	err := ffmpeg.Input("pipe:").
		Output("pipe:", ac.OutputArgs()).
		WithInput(inputAudio).
		WithOutput(outputAudio).
		OverWriteOutput().
		Run()
	if err != nil {
		return errors.Wrap(err, "ffmpeg convert to voice")
	}

	return nil
}
