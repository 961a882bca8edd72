package core

import (
	"errors"
	"sync"
)

// ErrUserAlreadyJoined is returned by Join when duplicate connections for one
// user in one room are disallowed by policy.
var ErrUserAlreadyJoined = errors.New("user already joined room")

// Registry is the concurrency-safe mapping from room to its live sessions.
// It is the only component that mutates room membership; the broadcaster
// reads snapshots.
type Registry struct {
	// allowDuplicates permits the same userId to hold several simultaneous
	// sessions in one room. Leave removes all of them at once, matching the
	// source system's behavior.
	allowDuplicates bool

	mu    sync.RWMutex
	rooms map[int64]map[string]*Session // roomID -> sessionID -> session
}

// NewRegistry constructs an empty registry.
func NewRegistry(allowDuplicates bool) *Registry {
	return &Registry{
		allowDuplicates: allowDuplicates,
		rooms:           make(map[int64]map[string]*Session),
	}
}

// Join adds a session to its room, creating the room entry if absent.
func (r *Registry) Join(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := r.rooms[s.RoomID]
	if room == nil {
		room = make(map[string]*Session)
		r.rooms[s.RoomID] = room
	}

	if !r.allowDuplicates {
		for _, member := range room {
			if member.UserID == s.UserID {
				return ErrUserAlreadyJoined
			}
		}
	}

	room[s.ID] = s
	return nil
}

// Leave removes every session in the room whose user matches userID and
// returns the removed sessions. Matching is by the UserID field, never by
// session identity: the value known at disconnect time is reconstructed from
// the closing handshake and is not the instance stored at join time.
// Absent room or unmatched user is a no-op. An emptied room entry is pruned.
func (r *Registry) Leave(roomID, userID int64) []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := r.rooms[roomID]
	if room == nil {
		return nil
	}

	var removed []*Session
	for id, member := range room {
		if member.UserID == userID {
			removed = append(removed, member)
			delete(room, id)
		}
	}

	if len(room) == 0 {
		delete(r.rooms, roomID)
	}
	return removed
}

// Members returns a snapshot of the room's sessions. The snapshot stays valid
// while concurrent joins and leaves mutate the room; delivery to a member
// that left after the snapshot was taken is best-effort.
func (r *Registry) Members(roomID int64) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room := r.rooms[roomID]
	if room == nil {
		return nil
	}

	members := make([]*Session, 0, len(room))
	for _, s := range room {
		members = append(members, s)
	}
	return members
}

// RoomCount returns the number of sessions currently in the room.
func (r *Registry) RoomCount(roomID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomID])
}
