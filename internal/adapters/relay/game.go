package relay

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/veikko/skystrike/internal/core"
	"github.com/veikko/skystrike/internal/domain"
)

// lookupRoom resolves the sender's room. Events from unbound sessions
// are expected around connect/disconnect races and dropped quietly.
func (ctl *Controller) lookupRoom(sid core.SessionID) (*core.Room, bool) {
	code, ok := ctl.Sessions.Lookup(sid)
	if !ok {
		log.Debug().Str("module", "relay").Str("sid", string(sid)).Msg("event from unbound session dropped")
		return nil, false
	}
	room, ok := ctl.Rooms.Get(code)
	if !ok {
		log.Debug().Str("module", "relay").Str("sid", string(sid)).Str("room", string(code)).Msg("event for dead room dropped")
		return nil, false
	}
	return room, true
}

func (ctl *Controller) handlePlayerUpdate(sid core.SessionID, data []byte) {
	room, ok := ctl.lookupRoom(sid)
	if !ok {
		return
	}
	var p struct {
		Type    string             `json:"type"`
		Updates domain.PlayerPatch `json:"updates"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "relay").Msg("bad playerUpdate payload")
		return
	}
	if !room.ApplyPatch(sid, p.Updates) {
		return
	}
	ctl.broadcast(room, struct {
		Type     string             `json:"type"`
		PlayerID string             `json:"playerId"`
		Updates  domain.PlayerPatch `json:"updates"`
	}{"playerUpdate", string(sid), p.Updates}, sid)
}

// handleProjectile relays to every member including the shooter; the
// client drops frames owned by its own player id.
func (ctl *Controller) handleProjectile(sid core.SessionID, data []byte) {
	room, ok := ctl.lookupRoom(sid)
	if !ok {
		return
	}
	var p struct {
		Type       string          `json:"type"`
		Projectile json.RawMessage `json:"projectile"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "relay").Msg("bad projectile payload")
		return
	}
	ctl.broadcast(room, struct {
		Type       string          `json:"type"`
		OwnerID    string          `json:"ownerId"`
		Projectile json.RawMessage `json:"projectile"`
	}{"projectile", string(sid), p.Projectile}, "")
}

func (ctl *Controller) handleEnemyHit(sid core.SessionID, data []byte) {
	room, ok := ctl.lookupRoom(sid)
	if !ok {
		return
	}
	var p struct {
		Type    string `json:"type"`
		EnemyID string `json:"enemyId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "relay").Msg("bad enemyHit payload")
		return
	}
	// Destruction is idempotent; racing reports for the same enemy
	// credit only the first reporter.
	room.DestroyEnemy(p.EnemyID, sid)
}

func (ctl *Controller) handleGameOver(sid core.SessionID) {
	room, ok := ctl.lookupRoom(sid)
	if !ok {
		return
	}
	room.EndGame()
}
