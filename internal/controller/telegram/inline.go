package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// inlineQuery answers with stored voices as cached-voice results. Anyone may query.
func (r *Router) inlineQuery(ctx context.Context, q *tgbotapi.InlineQuery) error {
	voices, err := r.voices.Search(ctx, q.Query, r.opts.InlineLimit)
	if err != nil {
		return err
	}

	results := make([]interface{}, 0, len(voices))
	for _, v := range voices {
		title := v.Title
		if title == "" {
			title = inlineEmptyTitle
		}
		result := tgbotapi.NewInlineQueryResultCachedVoice(uuid.NewString(), v.FileID, title)
		result.Caption = truncateRunes(v.Caption, maxCaptionRunes)
		results = append(results, result)
	}

	_, err = r.api.Request(tgbotapi.InlineConfig{
		InlineQueryID: q.ID,
		Results:       results,
		CacheTime:     r.opts.InlineCacheTime,
	})
	return errors.Wrap(err, "answer inline query")
}
