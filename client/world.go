// Package client is the network side of the game client: a local world
// mirror with immediate prediction for the local player and
// reconciliation rules for everything the relay broadcasts.
package client

import (
	"sync"

	"github.com/veikko/skystrike/internal/domain"
)

// World mirrors the room as this client sees it. The local player is
// simulated immediately on input; remote players, enemies and power-ups
// are whatever the server last said.
type World struct {
	mu          sync.Mutex
	selfID      string
	players     map[string]*domain.Player
	enemies     []domain.Enemy
	powerUps    []domain.PowerUp
	projectiles []domain.Projectile
}

func NewWorld() *World {
	return &World{players: make(map[string]*domain.Player)}
}

// SetSelf installs the local player record after a create/join reply.
func (w *World) SetSelf(p domain.Player) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selfID = p.ID
	cp := p
	w.players[p.ID] = &cp
}

// selfIDOnly marks which roster entry is the local player; the record
// itself arrives with the roster.
func (w *World) selfIDOnly(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selfID = id
}

func (w *World) SelfID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selfID
}

// ApplyRoster replaces the whole player set (roomJoined, gameStart),
// keeping the local record for self so prediction is not rolled back.
func (w *World) ApplyRoster(players []domain.Player) {
	w.mu.Lock()
	defer w.mu.Unlock()
	self := w.players[w.selfID]
	w.players = make(map[string]*domain.Player, len(players))
	for i := range players {
		cp := players[i]
		w.players[cp.ID] = &cp
	}
	if self != nil {
		if srv, ok := w.players[w.selfID]; ok {
			// Keep predicted position, adopt server-side flags.
			self.IsHost = srv.IsHost
		}
		w.players[w.selfID] = self
	}
}

func (w *World) ApplyPlayerJoined(p domain.Player) {
	w.mu.Lock()
	defer w.mu.Unlock()
	cp := p
	w.players[p.ID] = &cp
}

// ApplyPlayerLeft removes the player and flips the host flag on the
// promoted member when the relay announced a handoff.
func (w *World) ApplyPlayerLeft(playerID, newHostID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.players, playerID)
	if newHostID != "" {
		if p, ok := w.players[newHostID]; ok {
			p.IsHost = true
		}
	}
}

// ApplyPlayerUpdate overwrites the tracked fields of a remote player.
// Echoes of the local player are ignored; prediction already applied
// them.
func (w *World) ApplyPlayerUpdate(playerID string, patch domain.PlayerPatch) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if playerID == w.selfID {
		return
	}
	p, ok := w.players[playerID]
	if !ok {
		return
	}
	p.Apply(patch)
}

// ApplyGameState replaces the enemy and power-up collections wholesale;
// the snapshot is authoritative and never merged.
func (w *World) ApplyGameState(enemies []domain.Enemy, powerUps []domain.PowerUp) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.enemies = append([]domain.Enemy(nil), enemies...)
	w.powerUps = append([]domain.PowerUp(nil), powerUps...)
}

// ApplyProjectile appends a remote projectile. Frames owned by the
// local player are dropped, whatever the server's fan-out rule is.
func (w *World) ApplyProjectile(ownerID string, p domain.Projectile) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if ownerID == w.selfID {
		return
	}
	p.Owner = ownerID
	w.projectiles = append(w.projectiles, p)
}

func (w *World) ApplyEnemyDestroyed(enemyID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.enemies {
		if w.enemies[i].ID == enemyID {
			w.enemies = append(w.enemies[:i], w.enemies[i+1:]...)
			return
		}
	}
}

// PredictLocal applies input to the local player immediately, before
// any round trip.
func (w *World) PredictLocal(patch domain.PlayerPatch) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p, ok := w.players[w.selfID]; ok {
		p.Apply(patch)
	}
}

// AddOwnProjectile records a locally fired projectile.
func (w *World) AddOwnProjectile(p domain.Projectile) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p.Owner = w.selfID
	w.projectiles = append(w.projectiles, p)
}

func (w *World) Self() (domain.Player, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[w.selfID]
	if !ok {
		return domain.Player{}, false
	}
	return *p, true
}

func (w *World) Player(id string) (domain.Player, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[id]
	if !ok {
		return domain.Player{}, false
	}
	return *p, true
}

func (w *World) Players() []domain.Player {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]domain.Player, 0, len(w.players))
	for _, p := range w.players {
		out = append(out, *p)
	}
	return out
}

func (w *World) Enemies() []domain.Enemy {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]domain.Enemy(nil), w.enemies...)
}

func (w *World) PowerUps() []domain.PowerUp {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]domain.PowerUp(nil), w.powerUps...)
}

func (w *World) Projectiles() []domain.Projectile {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]domain.Projectile(nil), w.projectiles...)
}
