package core

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/veikko/skystrike/internal/domain"
)

const (
	codeLen     = 6
	codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Registry owns every live room. Rooms are created with a fresh
// collision-checked code and destroyed when their last member leaves.
type Registry struct {
	maxPlayers int
	startDelay time.Duration

	mu    sync.RWMutex
	rooms map[domain.RoomCode]*Room
}

func NewRegistry(maxPlayers int, startDelay time.Duration) *Registry {
	return &Registry{
		maxPlayers: maxPlayers,
		startDelay: startDelay,
		rooms:      make(map[domain.RoomCode]*Room),
	}
}

// Create registers an empty waiting room under a fresh code. The random
// code space makes collisions unlikely but the map is still checked and
// generation retried.
func (g *Registry) Create() (*Room, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for {
		code, err := generateCode()
		if err != nil {
			return nil, fmt.Errorf("generate room code: %w", err)
		}
		if _, taken := g.rooms[code]; taken {
			continue
		}
		room := NewRoom(code, g.maxPlayers, g.startDelay)
		g.rooms[code] = room
		log.Info().Str("module", "core.registry").Str("room", string(code)).Msg("room created")
		return room, nil
	}
}

func (g *Registry) Get(code domain.RoomCode) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	room, ok := g.rooms[code]
	return room, ok
}

// Destroy unregisters and closes the room. Callers invoke it once the
// room reports empty membership.
func (g *Registry) Destroy(code domain.RoomCode) {
	g.mu.Lock()
	room, ok := g.rooms[code]
	delete(g.rooms, code)
	g.mu.Unlock()
	if ok {
		room.Close()
		log.Info().Str("module", "core.registry").Str("room", string(code)).Msg("room destroyed")
	}
}

func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}

// ForEach visits every live room; used by the tick driver.
func (g *Registry) ForEach(fn func(*Room)) {
	g.mu.RLock()
	rooms := make([]*Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		rooms = append(rooms, r)
	}
	g.mu.RUnlock()
	for _, r := range rooms {
		fn(r)
	}
}

func generateCode() (domain.RoomCode, error) {
	buf := make([]byte, codeLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeCharset[int(b)%len(codeCharset)]
	}
	return domain.RoomCode(buf), nil
}
