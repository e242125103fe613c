package voice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"voice_relay/entity"
	"voice_relay/pkg/logger"
)

const traceName = "Voice-Usecase"

type VoiceUsecase struct {
	repo    entity.VoiceRepository
	events  entity.EventPublisher
	l       logger.Interface
	adminID int64
	now     func() time.Time
}

var _ entity.VoiceUsecase = (*VoiceUsecase)(nil)

func NewVoiceUsecase(repo entity.VoiceRepository, events entity.EventPublisher, l logger.Interface, adminID int64) *VoiceUsecase {
	if events == nil {
		events = NopPublisher{}
	}
	return &VoiceUsecase{repo: repo, events: events, l: l, adminID: adminID, now: time.Now}
}

// IsAdmin is the single-admin check guarding every write.
func (u *VoiceUsecase) IsAdmin(userID int64) bool {
	return u.adminID != 0 && userID == u.adminID
}

func (u *VoiceUsecase) Save(ctx context.Context, fileID, caption string) (entity.Voice, error) {
	ctx, span := otel.Tracer(traceName).Start(ctx, "Save")
	defer span.End()
	span.SetAttributes(attribute.String("file_id", fileID))

	title, description := SplitCaption(caption)
	now := u.now().UTC()
	v := entity.Voice{FileID: fileID, Title: title, Caption: description, AddedAt: now, UpdatedAt: now}

	// Re-sending a stored voice overwrites it but keeps the first add date.
	existing, err := u.repo.Get(ctx, fileID)
	switch {
	case err == nil:
		v.AddedAt = existing.AddedAt
	case !errors.Is(err, entity.ErrVoiceNotFound):
		return entity.Voice{}, errors.Wrap(err, "voice - Save")
	}

	if err := u.repo.Put(ctx, v); err != nil {
		return entity.Voice{}, errors.Wrap(err, "voice - Save")
	}

	u.publish(ctx, entity.VoiceSaved, v)
	return v, nil
}

func (u *VoiceUsecase) Edit(ctx context.Context, fileID, text string) (entity.Voice, error) {
	ctx, span := otel.Tracer(traceName).Start(ctx, "Edit")
	defer span.End()
	span.SetAttributes(attribute.String("file_id", fileID))

	v, err := u.repo.Get(ctx, fileID)
	if err != nil {
		return entity.Voice{}, errors.Wrap(err, "voice - Edit")
	}

	v.Title, v.Caption = SplitEdit(text)
	v.UpdatedAt = u.now().UTC()

	if err := u.repo.Put(ctx, v); err != nil {
		return entity.Voice{}, errors.Wrap(err, "voice - Edit")
	}

	u.publish(ctx, entity.VoiceUpdated, v)
	return v, nil
}

func (u *VoiceUsecase) Delete(ctx context.Context, fileID string) error {
	ctx, span := otel.Tracer(traceName).Start(ctx, "Delete")
	defer span.End()
	span.SetAttributes(attribute.String("file_id", fileID))

	if err := u.repo.Delete(ctx, fileID); err != nil {
		return errors.Wrap(err, "voice - Delete")
	}

	u.publish(ctx, entity.VoiceDeleted, entity.Voice{FileID: fileID})
	return nil
}

func (u *VoiceUsecase) Get(ctx context.Context, fileID string) (entity.Voice, error) {
	v, err := u.repo.Get(ctx, fileID)
	if err != nil {
		return entity.Voice{}, errors.Wrap(err, "voice - Get")
	}
	return v, nil
}

func (u *VoiceUsecase) List(ctx context.Context, limit int) ([]entity.Voice, error) {
	voices, err := u.repo.List(ctx, limit, nil)
	if err != nil {
		return nil, errors.Wrap(err, "voice - List")
	}
	return voices, nil
}

// Search returns up to limit records whose title or caption contains query.
func (u *VoiceUsecase) Search(ctx context.Context, query string, limit int) ([]entity.Voice, error) {
	ctx, span := otel.Tracer(traceName).Start(ctx, "Search")
	defer span.End()
	span.SetAttributes(attribute.String("query", query), attribute.Int("limit", limit))

	var filter entity.VoiceFilter
	if query != "" {
		filter = func(v entity.Voice) bool { return Matches(v.Title, v.Caption, query) }
	}

	voices, err := u.repo.List(ctx, limit, filter)
	if err != nil {
		return nil, errors.Wrap(err, "voice - Search")
	}
	return voices, nil
}

func (u *VoiceUsecase) Count(ctx context.Context) (int, error) {
	n, err := u.repo.Count(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "voice - Count")
	}
	return n, nil
}

// publish never fails the write that triggered it.
func (u *VoiceUsecase) publish(ctx context.Context, t entity.VoiceEventType, v entity.Voice) {
	event := entity.VoiceEvent{
		ID:         uuid.NewString(),
		Type:       t,
		Voice:      v,
		OccurredAt: u.now().UTC(),
	}
	if err := u.events.PublishVoiceEvent(ctx, event); err != nil {
		u.l.Warn("voice - publish %s event for %s: %v", t, v.FileID, err)
	}
}

// NopPublisher drops events; used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishVoiceEvent(context.Context, entity.VoiceEvent) error { return nil }
