package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"voice_relay/entity"
)

// text edits title and caption when the admin replies to a voice message.
// Any other text is ignored.
func (r *Router) text(ctx context.Context, m *tgbotapi.Message) error {
	if !r.isAdmin(m) {
		return nil
	}

	target := repliedVoice(m)
	if target == nil {
		return nil
	}

	_, err := r.voices.Edit(ctx, target.FileID, m.Text)
	switch {
	case errors.Is(err, entity.ErrVoiceNotFound):
		return r.reply(m, msgVoiceNotFound)
	case err != nil:
		return err
	}
	return r.reply(m, msgVoiceUpdated)
}
