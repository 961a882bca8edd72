package core

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/chatrelay/chatrelay-server/internal/store"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

// fakeTransport records sent frames and can be told to fail.
type fakeTransport struct {
	mu     sync.Mutex
	frames []string
	err    error
}

func (t *fakeTransport) Send(_ context.Context, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	t.frames = append(t.frames, text)
	return nil
}

func (t *fakeTransport) Frames() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.frames))
	copy(out, t.frames)
	return out
}

func (t *fakeTransport) Received(text string) bool {
	for _, f := range t.Frames() {
		if f == text {
			return true
		}
	}
	return false
}

// fakeStore implements store.MessageStore in memory. saveCh receives one
// value per SaveMessage attempt so tests can wait for async persists.
type fakeStore struct {
	mu      sync.Mutex
	saved   []*store.Message
	saveErr error
	saveCh  chan *store.Message
}

func newFakeStore() *fakeStore {
	return &fakeStore{saveCh: make(chan *store.Message, 16)}
}

func (s *fakeStore) SaveMessage(_ context.Context, msg *store.Message) error {
	s.mu.Lock()
	err := s.saveErr
	if err == nil {
		msg.ID = int64(len(s.saved) + 1)
		s.saved = append(s.saved, msg)
	}
	s.mu.Unlock()

	s.saveCh <- msg
	return err
}

func (s *fakeStore) Saved() []*store.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*store.Message, len(s.saved))
	copy(out, s.saved)
	return out
}

func (s *fakeStore) ListByRoom(context.Context, int64) ([]*store.Message, error) { return nil, nil }
func (s *fakeStore) ListByRoomDesc(context.Context, int64) ([]*store.Message, error) {
	return nil, nil
}
func (s *fakeStore) ListAfter(context.Context, int64, time.Time) ([]*store.Message, error) {
	return nil, nil
}
func (s *fakeStore) ListBefore(context.Context, int64, time.Time) ([]*store.Message, error) {
	return nil, nil
}
func (s *fakeStore) CountByRoom(context.Context, int64) (int64, error) { return 0, nil }
func (s *fakeStore) ListBySender(context.Context, int64) ([]*store.Message, error) {
	return nil, nil
}
func (s *fakeStore) ListBySenderInRoom(context.Context, int64, int64) ([]*store.Message, error) {
	return nil, nil
}
func (s *fakeStore) SearchInRoom(context.Context, int64, string) ([]*store.Message, error) {
	return nil, nil
}
func (s *fakeStore) LatestInRoom(context.Context, int64) (*store.Message, error) { return nil, nil }
func (s *fakeStore) DeleteBySenderInRoom(context.Context, int64, int64) error    { return nil }
func (s *fakeStore) DeleteByRoom(context.Context, int64) error                   { return nil }

func newTestSession(name string, userID, roomID int64) (*Session, *fakeTransport) {
	tr := &fakeTransport{}
	sess := NewSession(Handshake{Name: name, UserID: userID, RoomID: roomID}, tr)
	return sess, tr
}
