package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"voice_relay/entity"
)

func (r *Router) command(ctx context.Context, m *tgbotapi.Message) error {
	if !r.addressedToBot(m) {
		return nil
	}

	switch m.Command() {
	case "list":
		return r.list(ctx, m)
	case "delete":
		return r.delete(ctx, m)
	case "help", "start":
		return r.send(m.Chat.ID, helpText(r.opts.BotUsername))
	case "backup":
		return r.backup(ctx, m)
	}
	return nil
}

// addressedToBot rejects group commands like /list@otherbot.
func (r *Router) addressedToBot(m *tgbotapi.Message) bool {
	_, target, found := strings.Cut(m.CommandWithAt(), "@")
	return !found || strings.EqualFold(target, r.opts.BotUsername)
}

// list shows every stored title. It is not restricted to the admin.
func (r *Router) list(ctx context.Context, m *tgbotapi.Message) error {
	voices, err := r.voices.List(ctx, 0)
	if err != nil {
		return err
	}
	if len(voices) == 0 {
		return r.send(m.Chat.ID, msgListEmpty)
	}

	titles := make([]string, 0, len(voices))
	for _, v := range voices {
		titles = append(titles, v.Title)
	}
	for _, text := range listMessages(titles) {
		if err := r.send(m.Chat.ID, text); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) delete(ctx context.Context, m *tgbotapi.Message) error {
	if !r.isAdmin(m) {
		return nil
	}

	target := repliedVoice(m)
	if target == nil {
		return r.reply(m, msgDeleteUsage)
	}

	err := r.voices.Delete(ctx, target.FileID)
	switch {
	case errors.Is(err, entity.ErrVoiceNotFound):
		return r.reply(m, msgVoiceNotFound)
	case err != nil:
		return err
	}
	return r.reply(m, msgVoiceDeleted)
}

// backup uploads an archive when object storage is configured, otherwise it
// sends the archive to the admin as a document.
func (r *Router) backup(ctx context.Context, m *tgbotapi.Message) error {
	if !r.isAdmin(m) {
		return nil
	}
	if r.backups == nil {
		return r.reply(m, msgBackupDisabled)
	}

	b, err := r.backups.Backup(ctx)
	if errors.Is(err, entity.ErrBackupUnavailable) {
		return r.reply(m, msgBackupDisabled)
	}
	if err != nil {
		return err
	}

	if b.Location != "" {
		return r.reply(m, backupUploadedText(b.Location, b.Voices))
	}

	doc := tgbotapi.NewDocument(m.Chat.ID, tgbotapi.FileBytes{Name: b.Name, Bytes: b.Body})
	doc.Caption = backupDocumentCaption(b.Voices)
	doc.ReplyToMessageID = m.MessageID
	_, err = r.api.Send(doc)
	return errors.Wrap(err, "send backup document")
}
