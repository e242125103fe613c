package mirror

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"voice_relay/entity"
)

// VoiceRecord is the MySQL row mirroring one stored voice.
type VoiceRecord struct {
	FileID    string `gorm:"primaryKey;size:255"`
	Title     string `gorm:"size:1024"`
	Caption   string `gorm:"type:text"`
	AddedAt   time.Time
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
	EventID   string    `gorm:"size:64"`
}

func (VoiceRecord) TableName() string { return "voices" }

// Repository is the write side of the mirror.
type Repository interface {
	Upsert(ctx context.Context, rec VoiceRecord) error
	Delete(ctx context.Context, fileID string) error
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Migrate creates or updates the voices table.
func (r *GormRepository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&VoiceRecord{}); err != nil {
		return errors.Wrap(err, "mirror - migrate")
	}
	return nil
}

func (r *GormRepository) Upsert(ctx context.Context, rec VoiceRecord) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rec).Error
	return errors.Wrap(err, "mirror - upsert")
}

func (r *GormRepository) Delete(ctx context.Context, fileID string) error {
	err := r.db.WithContext(ctx).Delete(&VoiceRecord{}, "file_id = ?", fileID).Error
	return errors.Wrap(err, "mirror - delete")
}

func recordFromEvent(e entity.VoiceEvent) VoiceRecord {
	return VoiceRecord{
		FileID:    e.Voice.FileID,
		Title:     e.Voice.Title,
		Caption:   e.Voice.Caption,
		AddedAt:   e.Voice.AddedAt,
		UpdatedAt: e.Voice.UpdatedAt,
		EventID:   e.ID,
	}
}
