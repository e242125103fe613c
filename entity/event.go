package entity

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// ErrUnknownEvent marks an event whose type no consumer understands.
var ErrUnknownEvent = errors.New("unknown voice event type")

type VoiceEventType string

const (
	VoiceSaved   VoiceEventType = "saved"
	VoiceUpdated VoiceEventType = "updated"
	VoiceDeleted VoiceEventType = "deleted"
)

// VoiceEvent describes a completed write. Deleted events carry only Voice.FileID.
type VoiceEvent struct {
	ID         string         `json:"id"`
	Type       VoiceEventType `json:"type"`
	Voice      Voice          `json:"voice"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// RoutingKey is the AMQP topic key the event is published under.
func (e VoiceEvent) RoutingKey() string {
	return "voice." + string(e.Type)
}

type EventPublisher interface {
	PublishVoiceEvent(ctx context.Context, event VoiceEvent) error
}

// CatalogMirror applies voice events to a secondary copy of the catalog.
type CatalogMirror interface {
	Apply(ctx context.Context, event VoiceEvent) error
}
