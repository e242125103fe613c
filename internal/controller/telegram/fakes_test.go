package telegram

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"voice_relay/config"
	"voice_relay/entity"
	"voice_relay/internal/storage/boltrepo"
	"voice_relay/internal/voice"
	"voice_relay/pkg/logger"
)

const (
	adminID    = int64(1001)
	strangerID = int64(2002)
	chatID     = int64(555)
)

type fakeBot struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	fileURL  string
	sendErr  error
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sendErr != nil {
		return tgbotapi.Message{}, b.sendErr
	}
	b.sent = append(b.sent, c)
	if _, ok := c.(tgbotapi.VoiceConfig); ok {
		return tgbotapi.Message{Voice: &tgbotapi.Voice{FileID: "converted-voice"}}, nil
	}
	return tgbotapi.Message{}, nil
}

func (b *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (b *fakeBot) GetFileDirectURL(string) (string, error) {
	if b.fileURL == "" {
		return "", errors.New("no file")
	}
	return b.fileURL, nil
}

// texts returns the text of every sent plain message.
func (b *fakeBot) texts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, c := range b.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

type failingRepo struct {
	entity.VoiceRepository
}

func (failingRepo) Put(context.Context, entity.Voice) error { return errors.New("disk full") }

type stubBackup struct {
	backup entity.Backup
	err    error
}

func (s stubBackup) Backup(context.Context) (entity.Backup, error) { return s.backup, s.err }

type stubConverter struct {
	input []byte
}

func (c *stubConverter) ConvertToVoice(_ context.Context, r io.Reader, w io.Writer) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	c.input = b
	_, err = w.Write([]byte("OggS"))
	return err
}

type countingObserver struct {
	kinds  []string
	failed int
}

func (o *countingObserver) ObserveUpdate(kind string, _ time.Duration, failed bool) {
	o.kinds = append(o.kinds, kind)
	if failed {
		o.failed++
	}
}

type harness struct {
	router *Router
	bot    *fakeBot
	repo   *boltrepo.VoiceRepository
	voices *voice.VoiceUsecase
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	repo, err := boltrepo.NewVoiceRepository(config.DB{
		Path:        filepath.Join(t.TempDir(), "voices.db"),
		Bucket:      "voices",
		Compression: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	l := logger.NewWithWriter("error", io.Discard)
	voices := voice.NewVoiceUsecase(repo, nil, l, adminID)
	bot := &fakeBot{}

	return &harness{
		router: NewRouter(bot, voices, nil, nil, nil, l, Options{
			BotUsername: "relay_bot",
			InlineLimit: config.MaxInlineResults,
		}),
		bot:    bot,
		repo:   repo,
		voices: voices,
	}
}

func message(from int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 42,
		From:      &tgbotapi.User{ID: from},
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
	}
}

func command(from int64, cmd string) *tgbotapi.Message {
	m := message(from, cmd)
	m.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	return m
}

func voiceMessage(from int64, fileID, caption string) *tgbotapi.Message {
	m := message(from, "")
	m.Voice = &tgbotapi.Voice{FileID: fileID}
	m.Caption = caption
	return m
}

func replyTo(m *tgbotapi.Message, fileID string) *tgbotapi.Message {
	m.ReplyToMessage = &tgbotapi.Message{MessageID: 7, Voice: &tgbotapi.Voice{FileID: fileID}}
	return m
}

func update(m *tgbotapi.Message) tgbotapi.Update {
	return tgbotapi.Update{UpdateID: 1, Message: m}
}

func newFailingUsecase(h *harness) entity.VoiceUsecase {
	return voice.NewVoiceUsecase(failingRepo{h.repo}, nil, logger.NewWithWriter("error", io.Discard), adminID)
}
