// Package rooms holds the authoritative state of live collaboration rooms:
// one shared code document, one language tag and an ordered roster per room.
package rooms

import (
	"sync"
	"time"
)

const (
	// DefaultLanguage matches the editor's initial language selection.
	DefaultLanguage = "javascript"
)

type participant struct {
	connID string
	name   string
}

// Room is the mutable state of one collaboration session. Every mutation runs
// under the room's own mutex, so events apply one at a time in arrival order;
// content and language updates are full-value overwrites with no merging.
type Room struct {
	key string

	mu         sync.Mutex
	code       string
	language   string
	members    map[string]*participant // connection id -> participant
	order      []string                // connection ids in join order
	lastActive int64
	closed     bool
}

func newRoom(key string) *Room {
	return &Room{
		key:        key,
		language:   DefaultLanguage,
		members:    make(map[string]*participant),
		lastActive: time.Now().UnixMilli(),
	}
}

// Key returns the room's opaque identity.
func (r *Room) Key() string { return r.key }

// Join adds the connection to the roster, or updates its display name if it is
// already present (re-joins never duplicate an entry and keep the original
// position). The returned roster includes the joiner. ok is false when the
// registry closed the room before the join landed; callers should retry
// GetOrCreate in that case.
func (r *Room) Join(connID, name string) (roster []string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, false
	}

	if p, exists := r.members[connID]; exists {
		p.name = name
	} else {
		r.members[connID] = &participant{connID: connID, name: name}
		r.order = append(r.order, connID)
	}
	r.touch()
	return r.rosterLocked(), true
}

// Leave removes the connection from the roster. Absent connections are a
// no-op, since duplicate leaves from disconnect races are expected. empty
// reports whether the roster is now empty, meaning the caller should ask the
// registry to remove the room.
func (r *Room) Leave(connID string) (roster []string, removed, empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.members[connID]; !exists {
		return nil, false, len(r.members) == 0
	}

	delete(r.members, connID)
	for i, id := range r.order {
		if id == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.touch()
	return r.rosterLocked(), true, len(r.members) == 0
}

// SetCode overwrites the shared document. The last write the room receives
// wins; there is no diffing or conflict resolution. Senders that are not in
// the roster are ignored.
func (r *Room) SetCode(connID, code string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.members[connID]; !exists {
		return false
	}
	r.code = code
	r.touch()
	return true
}

// SetLanguage overwrites the room's language tag. The value is stored as-is;
// the room does not validate it against any known set.
func (r *Room) SetLanguage(connID, language string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.members[connID]; !exists {
		return false
	}
	r.language = language
	r.touch()
	return true
}

// Has reports whether the connection is currently in the roster.
func (r *Room) Has(connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.members[connID]
	return exists
}

// Snapshot returns the room's current document, language and roster, used to
// hydrate a newly joined participant.
func (r *Room) Snapshot() (code, language string, roster []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.code, r.language, r.rosterLocked()
}

// CloseIfEmpty marks the room closed iff no members remain, under the room's
// own lock. Only the registry calls this; a closed room rejects joins so a
// removal can never race with an in-flight join.
func (r *Room) CloseIfEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.members) > 0 {
		return false
	}
	r.closed = true
	return true
}

func (r *Room) rosterLocked() []string {
	roster := make([]string, 0, len(r.order))
	for _, id := range r.order {
		roster = append(roster, r.members[id].name)
	}
	return roster
}

func (r *Room) touch() {
	r.lastActive = time.Now().UnixMilli()
}
