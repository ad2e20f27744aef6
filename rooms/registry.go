package rooms

import (
	"sort"
	"sync"

	"coderoom-server/core"

	"github.com/sirupsen/logrus"
)

// Registry is the process-wide table of live rooms. Rooms are created lazily
// on first join and removed once their roster is empty. Lookups of existing
// rooms share the read lock, so unrelated rooms do not contend; only creation
// and removal take the write lock.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

// GetOrCreate returns the room for key, creating it if none exists. Under
// concurrent calls for the same unknown key exactly one room is created.
func (g *Registry) GetOrCreate(key string) *Room {
	g.mu.RLock()
	rm := g.rooms[key]
	g.mu.RUnlock()
	if rm != nil {
		return rm
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if rm = g.rooms[key]; rm != nil {
		return rm
	}
	rm = newRoom(key)
	g.rooms[key] = rm
	logrus.WithField("room", key).Info("Room created")
	return rm
}

// Get returns the room for key, or nil if none exists.
func (g *Registry) Get(key string) *Room {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.rooms[key]
}

// Remove deletes the room for key if it exists and is empty. The room closes
// itself under its own lock first, so a join that raced the removal either
// landed before (the room stays) or observes the closed room and retries.
// Removing an unknown or repopulated key is a no-op.
func (g *Registry) Remove(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rm := g.rooms[key]
	if rm == nil {
		return
	}
	if rm.CloseIfEmpty() {
		delete(g.rooms, key)
		logrus.WithField("room", key).Info("Room removed")
	}
}

// List returns the live rooms sorted by occupancy, then recency, then id.
func (g *Registry) List() []core.RoomInfo {
	g.mu.RLock()
	infos := make([]core.RoomInfo, 0, len(g.rooms))
	for key, rm := range g.rooms {
		rm.mu.Lock()
		infos = append(infos, core.RoomInfo{
			ID:         key,
			Users:      len(rm.members),
			Language:   rm.language,
			LastActive: rm.lastActive,
		})
		rm.mu.Unlock()
	}
	g.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Users == infos[j].Users {
			if infos[i].LastActive == infos[j].LastActive {
				return infos[i].ID < infos[j].ID
			}
			return infos[i].LastActive > infos[j].LastActive
		}
		return infos[i].Users > infos[j].Users
	})
	return infos
}
