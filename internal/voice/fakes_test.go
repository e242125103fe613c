package voice

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"

	"voice_relay/entity"
)

type memRepo struct {
	mu      sync.Mutex
	voices  map[string]entity.Voice
	failPut error
	failGet error
}

func newMemRepo() *memRepo {
	return &memRepo{voices: map[string]entity.Voice{}}
}

func (r *memRepo) Put(_ context.Context, v entity.Voice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failPut != nil {
		return r.failPut
	}
	if v.FileID == "" {
		return entity.ErrEmptyFileID
	}
	r.voices[v.FileID] = v
	return nil
}

func (r *memRepo) Get(_ context.Context, fileID string) (entity.Voice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failGet != nil {
		return entity.Voice{}, r.failGet
	}
	v, ok := r.voices[fileID]
	if !ok {
		return entity.Voice{}, entity.ErrVoiceNotFound
	}
	return v, nil
}

func (r *memRepo) Delete(_ context.Context, fileID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.voices[fileID]; !ok {
		return entity.ErrVoiceNotFound
	}
	delete(r.voices, fileID)
	return nil
}

func (r *memRepo) List(_ context.Context, limit int, filter entity.VoiceFilter) ([]entity.Voice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.voices))
	for k := range r.voices {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]entity.Voice, 0)
	for _, k := range keys {
		v := r.voices[k]
		if filter != nil && !filter(v) {
			continue
		}
		out = append(out, v)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *memRepo) Count(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.voices), nil
}

func (r *memRepo) Snapshot(_ context.Context, w io.Writer) (int64, error) {
	n, err := w.Write([]byte("bolt-snapshot"))
	return int64(n), err
}

type recordingPublisher struct {
	events []entity.VoiceEvent
	err    error
}

func (p *recordingPublisher) PublishVoiceEvent(_ context.Context, e entity.VoiceEvent) error {
	p.events = append(p.events, e)
	return p.err
}

type memStorage struct {
	bucket      string
	key         string
	contentType string
	body        []byte
	err         error
}

func (s *memStorage) UploadObject(_ context.Context, obj entity.UploadObject) error {
	if s.err != nil {
		return s.err
	}
	buf := &bytes.Buffer{}
	if _, err := buf.ReadFrom(obj.Body); err != nil {
		return err
	}
	s.bucket, s.key, s.contentType, s.body = obj.Bucket, obj.Key, obj.ContentType, buf.Bytes()
	return nil
}
