package telegram

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// maxMessageRunes is the Bot API limit on message text length.
	maxMessageRunes = 4096
	// maxCaptionRunes is the Bot API limit on media and inline result captions.
	maxCaptionRunes = 1024
)

const (
	msgVoiceSaved       = "Голосовое сообщение добавлено."
	msgVoiceDeleted     = "Голосовое сообщение удалено."
	msgVoiceUpdated     = "Информация о голосовом сообщении обновлена."
	msgVoiceNotFound    = "Это голосовое сообщение не найдено в базе данных."
	msgDeleteUsage      = "Чтобы удалить голосовое сообщение, ответьте на него командой /delete"
	msgListEmpty        = "Нет сохраненных голосовых сообщений."
	msgListHeader       = "Сохраненные голосовые сообщения:"
	msgGenericError     = "Произошла ошибка. Пожалуйста, повторите попытку позже."
	msgBackupDisabled   = "Резервное копирование не настроено."
	msgAudioUnsupported = "Конвертация аудио отключена. Отправьте голосовое сообщение."

	// inlineEmptyTitle replaces an empty title in inline results.
	inlineEmptyTitle = "пусто"
)

const helpTemplate = `
Помощь по использованию бота:

1. Отправьте голосовое сообщение, чтобы сохранить его.
2. Добавьте подпись при отправке голосового сообщения:
   - Первая строка будет использована как название
   - Остальные строки будут использованы как описание

3. Чтобы изменить информацию о голосовом сообщении:
   - Ответьте на голосовое сообщение текстом
   - Первая строка будет новым названием
   - Остальные строки будут новым описанием

4. Команды:
   /list - показать список всех сохраненных голосовых сообщений
   /delete - удалить голосовое сообщение (ответьте на голосовое)
   /backup - сохранить резервную копию базы
   /help - показать эту справку

5. Используйте инлайн-режим (@%s), чтобы отправить сохраненное голосовое сообщение.
`

func helpText(username string) string {
	return fmt.Sprintf(helpTemplate, username)
}

func backupUploadedText(location string, voices int) string {
	return fmt.Sprintf("Резервная копия сохранена: %s\nГолосовых сообщений: %d", location, voices)
}

func backupDocumentCaption(voices int) string {
	return fmt.Sprintf("Резервная копия. Голосовых сообщений: %d", voices)
}

// listMessages renders numbered titles and splits them into messages that fit
// the Bot API text limit. Only the first message carries the header.
func listMessages(titles []string) []string {
	lines := make([]string, 0, len(titles))
	for i, title := range titles {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, title))
	}
	return chunkLines(msgListHeader+"\n\n", lines, maxMessageRunes)
}

func chunkLines(prefix string, lines []string, limit int) []string {
	var (
		out   []string
		b     strings.Builder
		count int
	)
	b.WriteString(prefix)
	count = utf8.RuneCountInString(prefix)

	for _, line := range lines {
		line = truncateRunes(line, limit-1)
		n := utf8.RuneCountInString(line) + 1
		if count+n > limit && count > 0 {
			out = append(out, strings.TrimRight(b.String(), "\n"))
			b.Reset()
			count = 0
		}
		b.WriteString(line)
		b.WriteByte('\n')
		count += n
	}
	if count > 0 {
		out = append(out, strings.TrimRight(b.String(), "\n"))
	}
	return out
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
