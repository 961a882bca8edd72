package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chatrelay/chatrelay-server/internal/store"
)

func TestBridgePersistAsync(t *testing.T) {
	st := newFakeStore()
	bridge := NewBridge(st, 0, testLogger())

	bridge.PersistAsync(&store.Message{RoomID: 42, SenderID: 1, Content: "hi", CreatedAt: time.Now()})

	select {
	case <-st.saveCh:
	case <-time.After(2 * time.Second):
		t.Fatalf("store write never happened")
	}

	saved := st.Saved()
	if len(saved) != 1 {
		t.Fatalf("saved = %d messages, want 1", len(saved))
	}
	if saved[0].RoomID != 42 || saved[0].SenderID != 1 || saved[0].Content != "hi" {
		t.Fatalf("unexpected saved message: %+v", saved[0])
	}
}

func TestBridgeWriteFailureIsSwallowed(t *testing.T) {
	st := newFakeStore()
	st.saveErr = errors.New("store unavailable")
	bridge := NewBridge(st, 0, testLogger())

	// Must not panic or surface anything to the caller.
	bridge.PersistAsync(&store.Message{RoomID: 42, SenderID: 1, Content: "lost", CreatedAt: time.Now()})

	select {
	case <-st.saveCh:
	case <-time.After(2 * time.Second):
		t.Fatalf("store write never attempted")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := bridge.Drain(ctx); err != nil {
		t.Fatalf("drain: %v", err)
	}

	if len(st.Saved()) != 0 {
		t.Fatalf("failed write ended up in store")
	}

	// A later write still goes through.
	st.saveErr = nil
	bridge.PersistAsync(&store.Message{RoomID: 42, SenderID: 2, Content: "ok", CreatedAt: time.Now()})
	<-st.saveCh
	if len(st.Saved()) != 1 {
		t.Fatalf("subsequent write did not reach store")
	}
}

func TestBridgeDrainWaitsForInflightWrites(t *testing.T) {
	st := newFakeStore()
	bridge := NewBridge(st, 0, testLogger())

	for i := 0; i < 10; i++ {
		bridge.PersistAsync(&store.Message{RoomID: 42, SenderID: int64(i), Content: "x", CreatedAt: time.Now()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := bridge.Drain(ctx); err != nil {
		t.Fatalf("drain: %v", err)
	}

	if got := len(st.Saved()); got != 10 {
		t.Fatalf("saved = %d messages, want 10", got)
	}
}
