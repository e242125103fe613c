package mirror

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"voice_relay/entity"
	"voice_relay/pkg/logger"
)

const traceName = "Mirror-Usecase"

// MirrorUsecase keeps the SQL catalog in step with the bot's store.
type MirrorUsecase struct {
	repo Repository
	l    logger.Interface
}

var _ entity.CatalogMirror = (*MirrorUsecase)(nil)

func NewMirrorUsecase(repo Repository, l logger.Interface) *MirrorUsecase {
	return &MirrorUsecase{repo: repo, l: l}
}

func (m *MirrorUsecase) Apply(ctx context.Context, event entity.VoiceEvent) error {
	ctx, span := otel.Tracer(traceName).Start(ctx, "Apply")
	defer span.End()
	span.SetAttributes(attribute.String("type", string(event.Type)), attribute.String("file_id", event.Voice.FileID))

	if event.Voice.FileID == "" {
		return entity.ErrEmptyFileID
	}

	switch event.Type {
	case entity.VoiceSaved, entity.VoiceUpdated:
		if err := m.repo.Upsert(ctx, recordFromEvent(event)); err != nil {
			return err
		}
	case entity.VoiceDeleted:
		if err := m.repo.Delete(ctx, event.Voice.FileID); err != nil {
			return err
		}
	default:
		return errors.Wrapf(entity.ErrUnknownEvent, "%q", event.Type)
	}

	m.l.Debug("mirror - applied %s for %s", event.Type, event.Voice.FileID)
	return nil
}
