package entity

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrVoiceNotFound = errors.New("voice not found")
	ErrEmptyFileID   = errors.New("empty file id")
)

// Voice is a stored voice-message reference. FileID is the unique key.
type Voice struct {
	FileID    string    `json:"file_id"`
	Title     string    `json:"title"`
	Caption   string    `json:"caption"`
	AddedAt   time.Time `json:"added_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VoiceFilter selects records during a scan. A nil filter selects everything.
type VoiceFilter func(v Voice) bool

type VoiceRepository interface {
	Put(ctx context.Context, v Voice) error
	Get(ctx context.Context, fileID string) (Voice, error)
	Delete(ctx context.Context, fileID string) error
	List(ctx context.Context, limit int, filter VoiceFilter) ([]Voice, error)
	Count(ctx context.Context) (int, error)
}

type VoiceUsecase interface {
	IsAdmin(userID int64) bool
	Save(ctx context.Context, fileID, caption string) (Voice, error)
	Edit(ctx context.Context, fileID, text string) (Voice, error)
	Delete(ctx context.Context, fileID string) error
	Get(ctx context.Context, fileID string) (Voice, error)
	List(ctx context.Context, limit int) ([]Voice, error)
	Search(ctx context.Context, query string, limit int) ([]Voice, error)
	Count(ctx context.Context) (int, error)
}
