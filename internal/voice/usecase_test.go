package voice

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice_relay/entity"
	"voice_relay/pkg/logger"
)

const adminID = int64(4242)

func newUsecase(t *testing.T) (*VoiceUsecase, *memRepo, *recordingPublisher) {
	t.Helper()
	repo := newMemRepo()
	pub := &recordingPublisher{}
	uc := NewVoiceUsecase(repo, pub, logger.NewWithWriter("error", io.Discard), adminID)
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return uc, repo, pub
}

func TestVoiceUsecase_IsAdmin(t *testing.T) {
	uc, _, _ := newUsecase(t)
	assert.True(t, uc.IsAdmin(adminID))
	assert.False(t, uc.IsAdmin(1))

	nobody := NewVoiceUsecase(newMemRepo(), nil, logger.NewWithWriter("error", io.Discard), 0)
	assert.False(t, nobody.IsAdmin(0))
}

func TestVoiceUsecase_Save(t *testing.T) {
	uc, repo, pub := newUsecase(t)
	ctx := context.Background()

	v, err := uc.Save(ctx, "file-1", "Заголовок\nописание\nещё")
	require.NoError(t, err)
	assert.Equal(t, "Заголовок", v.Title)
	assert.Equal(t, "описание\nещё", v.Caption)
	assert.False(t, v.AddedAt.IsZero())

	stored, err := repo.Get(ctx, "file-1")
	require.NoError(t, err)
	assert.Equal(t, v, stored)

	require.Len(t, pub.events, 1)
	assert.Equal(t, entity.VoiceSaved, pub.events[0].Type)
	assert.Equal(t, "voice.saved", pub.events[0].RoutingKey())
	assert.NotEmpty(t, pub.events[0].ID)
}

func TestVoiceUsecase_SaveKeepsAddedAt(t *testing.T) {
	uc, _, pub := newUsecase(t)
	ctx := context.Background()

	first, err := uc.Save(ctx, "file-1", "старое")
	require.NoError(t, err)

	second, err := uc.Save(ctx, "file-1", "новое")
	require.NoError(t, err)
	assert.Equal(t, "новое", second.Title)
	assert.Equal(t, first.AddedAt, second.AddedAt)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	require.Len(t, pub.events, 2)
	assert.Equal(t, first.AddedAt, pub.events[1].Voice.AddedAt)
}

func TestVoiceUsecase_SaveLookupError(t *testing.T) {
	uc, repo, pub := newUsecase(t)
	repo.failGet = errors.New("io error")

	_, err := uc.Save(context.Background(), "file-1", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "io error")
	assert.Empty(t, pub.events)
}

func TestVoiceUsecase_SaveWithoutCaption(t *testing.T) {
	uc, _, _ := newUsecase(t)

	v, err := uc.Save(context.Background(), "file-1", "")
	require.NoError(t, err)
	assert.Equal(t, EmptyPlaceholder, v.Title)
	assert.Equal(t, EmptyPlaceholder, v.Caption)
}

func TestVoiceUsecase_SaveStoreError(t *testing.T) {
	uc, repo, pub := newUsecase(t)
	repo.failPut = errors.New("disk full")

	_, err := uc.Save(context.Background(), "file-1", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Empty(t, pub.events)
}

func TestVoiceUsecase_PublishErrorIgnored(t *testing.T) {
	uc, _, pub := newUsecase(t)
	pub.err = errors.New("broker down")

	_, err := uc.Save(context.Background(), "file-1", "x")
	assert.NoError(t, err)
}

func TestVoiceUsecase_Edit(t *testing.T) {
	uc, _, pub := newUsecase(t)
	ctx := context.Background()

	saved, err := uc.Save(ctx, "file-1", "Old")
	require.NoError(t, err)

	edited, err := uc.Edit(ctx, "file-1", "New title")
	require.NoError(t, err)
	assert.Equal(t, "New title", edited.Title)
	assert.Equal(t, EmptyPlaceholder, edited.Caption)
	assert.Equal(t, saved.AddedAt, edited.AddedAt)
	assert.True(t, edited.UpdatedAt.After(saved.UpdatedAt))

	require.Len(t, pub.events, 2)
	assert.Equal(t, entity.VoiceUpdated, pub.events[1].Type)
}

func TestVoiceUsecase_EditMissing(t *testing.T) {
	uc, _, pub := newUsecase(t)

	_, err := uc.Edit(context.Background(), "nope", "title")
	assert.ErrorIs(t, err, entity.ErrVoiceNotFound)
	assert.Empty(t, pub.events)
}

func TestVoiceUsecase_Delete(t *testing.T) {
	uc, repo, pub := newUsecase(t)
	ctx := context.Background()

	_, err := uc.Save(ctx, "file-1", "x")
	require.NoError(t, err)

	require.NoError(t, uc.Delete(ctx, "file-1"))
	n, _ := repo.Count(ctx)
	assert.Equal(t, 0, n)

	require.Len(t, pub.events, 2)
	assert.Equal(t, entity.VoiceDeleted, pub.events[1].Type)
	assert.Equal(t, "file-1", pub.events[1].Voice.FileID)

	assert.ErrorIs(t, uc.Delete(ctx, "file-1"), entity.ErrVoiceNotFound)
}

func TestVoiceUsecase_SearchAndList(t *testing.T) {
	uc, _, _ := newUsecase(t)
	ctx := context.Background()

	for id, caption := range map[string]string{
		"a": "Кот\nмяу",
		"b": "Собака\nгав",
		"c": "Ещё кот",
		"d": "Птица\nкот поёт",
	} {
		_, err := uc.Save(ctx, id, caption)
		require.NoError(t, err)
	}

	all, err := uc.Search(ctx, "", 3)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	cats, err := uc.Search(ctx, "КОТ", 50)
	require.NoError(t, err)
	var got []string
	for _, v := range cats {
		got = append(got, v.FileID)
	}
	assert.Equal(t, []string{"a", "c", "d"}, got)

	listed, err := uc.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, listed, 4)

	n, err := uc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}
