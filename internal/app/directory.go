package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/veikko/skystrike/internal/core"
	"github.com/veikko/skystrike/internal/domain"
)

// Directory routes inbound events: session id to the room the session
// is a member of. Entries live exactly as long as the membership; a
// session is never in two rooms at once.
type Directory struct {
	mu       sync.RWMutex
	byRoomOf map[core.SessionID]domain.RoomCode
}

func NewDirectory() *Directory {
	return &Directory{byRoomOf: make(map[core.SessionID]domain.RoomCode)}
}

// Bind associates the session with a room. Rebinding without an unbind
// is an error condition, not a silent overwrite.
func (d *Directory) Bind(sid core.SessionID, code domain.RoomCode) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.byRoomOf[sid]; ok {
		return domain.ErrSessionBound
	}
	d.byRoomOf[sid] = code
	log.Info().Str("module", "app.directory").Str("sid", string(sid)).Str("room", string(code)).Msg("bound session")
	return nil
}

func (d *Directory) Unbind(sid core.SessionID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.byRoomOf, sid)
	log.Info().Str("module", "app.directory").Str("sid", string(sid)).Msg("unbound session")
}

func (d *Directory) Lookup(sid core.SessionID) (domain.RoomCode, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	code, ok := d.byRoomOf[sid]
	return code, ok
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byRoomOf)
}
