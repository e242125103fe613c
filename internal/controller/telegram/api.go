package telegram

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const traceName = "Telegram"

// BotAPI is the part of *tgbotapi.BotAPI the router talks to.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

var _ BotAPI = (*tgbotapi.BotAPI)(nil)

// UpdateObserver records per-update metrics.
type UpdateObserver interface {
	ObserveUpdate(kind string, took time.Duration, failed bool)
}

type nopObserver struct{}

func (nopObserver) ObserveUpdate(string, time.Duration, bool) {}

// Options tunes the router.
type Options struct {
	BotUsername     string
	InlineLimit     int
	InlineCacheTime int
	ConvertAudio    bool
}
