package telegram

import (
	"context"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"voice_relay/entity"
	"voice_relay/pkg/logger"
)

// Router dispatches Telegram updates to the voice handlers.
type Router struct {
	api       BotAPI
	voices    entity.VoiceUsecase
	backups   entity.BackupUsecase
	converter entity.AudioConverter
	metrics   UpdateObserver
	client    *http.Client
	l         logger.Interface
	opts      Options
}

// NewRouter wires the handlers. backups, converter and metrics may be nil.
func NewRouter(api BotAPI, voices entity.VoiceUsecase, backups entity.BackupUsecase, converter entity.AudioConverter, metrics UpdateObserver, l logger.Interface, opts Options) *Router {
	if metrics == nil {
		metrics = nopObserver{}
	}
	return &Router{
		api:       api,
		voices:    voices,
		backups:   backups,
		converter: converter,
		metrics:   metrics,
		client:    &http.Client{Timeout: downloadTimeout},
		l:         l,
		opts:      opts,
	}
}

// Serve handles updates one at a time until ctx is done or updates is closed.
func (r *Router) Serve(ctx context.Context, updates <-chan tgbotapi.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			r.HandleUpdate(ctx, u)
		}
	}
}

// HandleUpdate runs the matching handler. A failing handler is logged and,
// for messages, answered with the generic error reply.
func (r *Router) HandleUpdate(ctx context.Context, u tgbotapi.Update) {
	kind, handle := r.route(u)
	if handle == nil {
		return
	}

	ctx, span := otel.Tracer(traceName).Start(ctx, kind)
	defer span.End()
	span.SetAttributes(attribute.Int("update_id", u.UpdateID))

	start := time.Now()
	err := handle(ctx)
	r.metrics.ObserveUpdate(kind, time.Since(start), err != nil)
	if err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	r.l.Error(err, "telegram - %s - update %d", kind, u.UpdateID)

	if u.Message != nil {
		if _, sendErr := r.api.Send(tgbotapi.NewMessage(u.Message.Chat.ID, msgGenericError)); sendErr != nil {
			r.l.Error(sendErr, "telegram - error reply")
		}
	}
}

func (r *Router) route(u tgbotapi.Update) (string, func(ctx context.Context) error) {
	if q := u.InlineQuery; q != nil {
		return "inline_query", func(ctx context.Context) error { return r.inlineQuery(ctx, q) }
	}

	m := u.Message
	if m == nil || m.Chat == nil {
		return "", nil
	}

	switch {
	case m.IsCommand():
		return "command", func(ctx context.Context) error { return r.command(ctx, m) }
	case m.Voice != nil:
		return "voice", func(ctx context.Context) error { return r.voice(ctx, m) }
	case m.Audio != nil:
		return "audio", func(ctx context.Context) error { return r.audio(ctx, m) }
	case m.Text != "":
		return "text", func(ctx context.Context) error { return r.text(ctx, m) }
	}
	return "", nil
}

func (r *Router) isAdmin(m *tgbotapi.Message) bool {
	return m.From != nil && r.voices.IsAdmin(m.From.ID)
}

func (r *Router) send(chatID int64, text string) error {
	_, err := r.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// reply threads text under the triggering message.
func (r *Router) reply(m *tgbotapi.Message, text string) error {
	msg := tgbotapi.NewMessage(m.Chat.ID, text)
	msg.ReplyToMessageID = m.MessageID
	_, err := r.api.Send(msg)
	return err
}

// repliedVoice returns the voice m replies to, if any.
func repliedVoice(m *tgbotapi.Message) *tgbotapi.Voice {
	if m.ReplyToMessage == nil {
		return nil
	}
	return m.ReplyToMessage.Voice
}
