package telegram

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

const (
	downloadTimeout = time.Minute
	// maxDownloadBytes is the Bot API getFile size limit.
	maxDownloadBytes = 20 << 20
)

// voice stores an admin's voice message. Everyone else is ignored.
func (r *Router) voice(ctx context.Context, m *tgbotapi.Message) error {
	if !r.isAdmin(m) {
		return nil
	}

	if _, err := r.voices.Save(ctx, m.Voice.FileID, m.Caption); err != nil {
		return err
	}
	return r.reply(m, msgVoiceSaved)
}

// audio converts an admin's audio file into a voice note, posts it back to
// obtain a voice file id, and stores that id.
func (r *Router) audio(ctx context.Context, m *tgbotapi.Message) error {
	if !r.isAdmin(m) {
		return nil
	}
	if !r.opts.ConvertAudio || r.converter == nil {
		return r.reply(m, msgAudioUnsupported)
	}

	url, err := r.api.GetFileDirectURL(m.Audio.FileID)
	if err != nil {
		return errors.Wrap(err, "get audio file url")
	}

	body, err := r.download(ctx, url)
	if err != nil {
		return err
	}

	converted := &bytes.Buffer{}
	if err := r.converter.ConvertToVoice(ctx, bytes.NewReader(body), converted); err != nil {
		return err
	}

	vc := tgbotapi.NewVoice(m.Chat.ID, tgbotapi.FileBytes{Name: "voice.ogg", Bytes: converted.Bytes()})
	vc.ReplyToMessageID = m.MessageID
	sent, err := r.api.Send(vc)
	if err != nil {
		return errors.Wrap(err, "send converted voice")
	}
	if sent.Voice == nil {
		return errors.New("send converted voice: response has no voice")
	}

	caption := m.Caption
	if caption == "" {
		caption = m.Audio.Title
	}
	if _, err := r.voices.Save(ctx, sent.Voice.FileID, caption); err != nil {
		return err
	}
	return r.reply(m, msgVoiceSaved)
}

func (r *Router) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "download audio")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "download audio")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download audio: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, "download audio")
	}
	if len(body) > maxDownloadBytes {
		return nil, errors.New("download audio: file exceeds 20 MB")
	}
	return body, nil
}
