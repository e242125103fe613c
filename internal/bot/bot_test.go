package bot

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice_relay/config"
	"voice_relay/internal/controller/telegram"
	"voice_relay/internal/storage/boltrepo"
	"voice_relay/internal/voice"
	"voice_relay/pkg/logger"
)

type silentBot struct{}

func (silentBot) Send(tgbotapi.Chattable) (tgbotapi.Message, error) { return tgbotapi.Message{}, nil }

func (silentBot) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (silentBot) GetFileDirectURL(string) (string, error) { return "", nil }

func TestAwaitDrain_HandlesBufferedUpdates(t *testing.T) {
	repo, err := boltrepo.NewVoiceRepository(config.DB{Path: filepath.Join(t.TempDir(), "voices.db"), Bucket: "voices"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	l := logger.NewWithWriter("error", io.Discard)
	const admin = int64(7)
	router := telegram.NewRouter(silentBot{}, voice.NewVoiceUsecase(repo, nil, l, admin), nil, nil, nil, l, telegram.Options{})

	updates := make(chan tgbotapi.Update, 3)
	served := make(chan struct{})
	go func() {
		defer close(served)
		router.Serve(context.Background(), updates)
	}()

	for _, id := range []string{"a", "b", "c"} {
		updates <- tgbotapi.Update{Message: &tgbotapi.Message{
			From:  &tgbotapi.User{ID: admin},
			Chat:  &tgbotapi.Chat{ID: 1},
			Voice: &tgbotapi.Voice{FileID: id},
		}}
	}
	close(updates)

	require.True(t, awaitDrain(served, 2*time.Second))
	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestAwaitDrain_Timeout(t *testing.T) {
	assert.False(t, awaitDrain(make(chan struct{}), 10*time.Millisecond))
}
