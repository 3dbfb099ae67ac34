package core

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/veikko/skystrike/internal/domain"
)

// Room is the authoritative state of one match: membership, host
// assignment and the server-owned enemy/power-up simulation. All
// mutation goes through the room mutex; the registry owns its lifetime
// and a room never destroys itself.
type Room struct {
	code       domain.RoomCode
	maxPlayers int
	startDelay time.Duration

	mu        sync.Mutex
	state     domain.RoomState
	members   map[SessionID]MemberSession
	order     []SessionID // join order, drives host promotion
	host      SessionID
	enemies   []domain.Enemy
	powerUps  []domain.PowerUp
	lastSpawn time.Time
	nextSpawn time.Duration
	startT    *time.Timer
	closed    bool
	// Members dropped by room-originated broadcasts, surfaced through
	// the next Tick result so the driver can apply the backpressure
	// policy.
	dropped []SessionID
}

func NewRoom(code domain.RoomCode, maxPlayers int, startDelay time.Duration) *Room {
	return &Room{
		code:       code,
		maxPlayers: maxPlayers,
		startDelay: startDelay,
		state:      domain.StateWaiting,
		members:    make(map[SessionID]MemberSession),
	}
}

func (r *Room) Code() domain.RoomCode { return r.code }

func (r *Room) State() domain.RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

func (r *Room) HostID() SessionID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.host
}

// MembersSnapshot returns the player records in join order.
func (r *Room) MembersSnapshot() []domain.Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playersLocked()
}

func (r *Room) playersLocked() []domain.Player {
	out := make([]domain.Player, 0, len(r.order))
	for _, sid := range r.order {
		if ms, ok := r.members[sid]; ok {
			out = append(out, *ms.Player())
		}
	}
	return out
}

// AddMember admits a session. The first member of an empty room becomes
// host. Reaching two members in the waiting state schedules the
// automatic game start after the grace delay.
func (r *Room) AddMember(sid SessionID, ms MemberSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return domain.ErrRoomClosed
	}
	if len(r.members) >= r.maxPlayers {
		return domain.ErrRoomFull
	}
	if len(r.members) == 0 {
		r.host = sid
		ms.Player().IsHost = true
	}
	r.members[sid] = ms
	r.order = append(r.order, sid)
	log.Info().Str("module", "core.room").Str("room", string(r.code)).Str("sid", string(sid)).Int("members", len(r.members)).Msg("member added")

	if len(r.members) >= 2 && r.state == domain.StateWaiting && r.startT == nil {
		r.startT = time.AfterFunc(r.startDelay, r.autoStart)
	}
	return nil
}

// autoStart runs after the grace delay; a destroyed or already started
// room makes it a no-op.
func (r *Room) autoStart() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.state != domain.StateWaiting {
		return
	}
	r.startLocked(time.Now())
}

// RemoveMember drops a session, promoting the earliest-joined survivor
// when the host leaves. It reports the new host (empty if unchanged)
// and whether the room is now empty so the registry can destroy it.
func (r *Room) RemoveMember(sid SessionID) (newHost SessionID, empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[sid]; !ok {
		return "", len(r.members) == 0
	}
	delete(r.members, sid)
	for i, id := range r.order {
		if id == sid {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if r.host == sid && len(r.order) > 0 {
		r.host = r.order[0]
		r.members[r.host].Player().IsHost = true
		newHost = r.host
		log.Info().Str("module", "core.room").Str("room", string(r.code)).Str("sid", string(newHost)).Msg("host promoted")
	}
	log.Info().Str("module", "core.room").Str("room", string(r.code)).Str("sid", string(sid)).Int("members", len(r.members)).Msg("member removed")
	return newHost, len(r.members) == 0
}

// ApplyPatch merges a client-reported partial update into the member's
// record. Unknown sessions are ignored.
func (r *Room) ApplyPatch(sid SessionID, patch domain.PlayerPatch) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	ms, ok := r.members[sid]
	if !ok {
		return false
	}
	ms.Player().Apply(patch)
	return true
}

// StartGame begins the match immediately, independent of the grace
// timer. Only valid from the waiting state.
func (r *Room) StartGame() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != domain.StateWaiting {
		return
	}
	r.startLocked(time.Now())
}

func (r *Room) startLocked(now time.Time) {
	r.state = domain.StatePlaying
	r.enemies = nil
	r.powerUps = nil
	r.lastSpawn = now
	r.nextSpawn = rollSpawnInterval()
	log.Info().Str("module", "core.room").Str("room", string(r.code)).Msg("game started")
	if f, ok := encode(gameStartEvent{Type: "gameStart", Players: r.playersLocked()}); ok {
		res := r.broadcastLocked(f, "")
		r.dropped = append(r.dropped, res.Dropped...)
	}
}

// EndGame moves the room to its terminal state. Enemy simulation stops;
// membership and teardown behave as usual.
func (r *Room) EndGame() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != domain.StatePlaying {
		return
	}
	r.state = domain.StateEnded
	log.Info().Str("module", "core.room").Str("room", string(r.code)).Msg("game ended")
}

/// Tick advances the authoritative simulation: spawn on a jittered
// interval, move every enemy down, drop the ones past the exit bound,
// then broadcast the full snapshot to all members. Full state rather
// than deltas keeps dropped messages self-healing. The result carries
// every member dropped since the previous tick, including drops from
// the room's own event broadcasts, so the driver can apply its
// backpressure policy.
func (r *Room) Tick(now time.Time) PublishResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := PublishResult{Dropped: r.dropped}
	r.dropped = nil
	if r.state != domain.StatePlaying {
		return res
	}

	if now.Sub(r.lastSpawn) > r.nextSpawn {
		r.enemies = append(r.enemies, domain.NewEnemy())
		r.lastSpawn = now
		r.nextSpawn = rollSpawnInterval()
	}

	alive := r.enemies[:0]
	for i := range r.enemies {
		e := r.enemies[i]
		e.Y += e.Speed * domain.TickSeconds
		if e.Y < domain.PlayfieldExitY {
			alive = append(alive, e)
		}
	}
	r.enemies = alive

	snap := gameStateEvent{
		Type:     "gameState",
		Enemies:  append([]domain.Enemy(nil), r.enemies...),
		PowerUps: append([]domain.PowerUp(nil), r.powerUps...),
	}
	if f, ok := encode(snap); ok {
		snapRes := r.broadcastLocked(f, "")
		res.SentTo += snapRes.SentTo
		res.Dropped = append(res.Dropped, snapRes.Dropped...)
	}
	return res
}

func rollSpawnInterval() time.Duration {
	return domain.SpawnIntervalMin + time.Duration(rand.Float64()*float64(domain.SpawnIntervalJitter))
}

// DestroyEnemy removes an enemy on a client hit report, credits the
// reporter and rolls a power-up drop. Idempotent by enemy id so racing
// reports from several clients cannot double-credit.
func (r *Room) DestroyEnemy(enemyID string, by SessionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := -1
	for i := range r.enemies {
		if r.enemies[i].ID == enemyID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	e := r.enemies[idx]
	r.enemies = append(r.enemies[:idx], r.enemies[idx+1:]...)

	if ms, ok := r.members[by]; ok {
		ms.Player().Score += domain.KillScore
	}
	if rand.Float64() < domain.PowerUpChance {
		r.powerUps = append(r.powerUps, domain.NewPowerUp(e.X+e.Width/2, e.Y+e.Height/2))
	}
	if f, ok := encode(enemyDestroyedEvent{Type: "enemyDestroyed", EnemyID: enemyID, PlayerID: string(by)}); ok {
		res := r.broadcastLocked(f, "")
		r.dropped = append(r.dropped, res.Dropped...)
	}
	return true
}

// Enemies returns a copy of the live enemy list.
func (r *Room) Enemies() []domain.Enemy {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Enemy(nil), r.enemies...)
}

// PowerUps returns a copy of the live power-up list.
func (r *Room) PowerUps() []domain.PowerUp {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.PowerUp(nil), r.powerUps...)
}

// Member returns the session currently registered under sid.
func (r *Room) Member(sid SessionID) (MemberSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ms, ok := r.members[sid]
	return ms, ok
}

// Broadcast fans a frame out to every member except the optionally
// excluded one. Delivery is fire-and-forget; members whose send buffer
// was full come back in the result for the caller to deal with.
func (r *Room) Broadcast(f Frame, exclude SessionID) PublishResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.broadcastLocked(f, exclude)
}

func (r *Room) broadcastLocked(f Frame, exclude SessionID) PublishResult {
	res := PublishResult{}
	for sid, ms := range r.members {
		if sid == exclude {
			continue
		}
		if err := ms.Signal().TrySend(f); err != nil {
			res.Dropped = append(res.Dropped, sid)
			continue
		}
		res.SentTo++
	}
	return res
}

// Close marks the room dead and cancels the pending auto-start timer.
// Called by the registry on destroy, never by the room itself.
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	if r.startT != nil {
		r.startT.Stop()
	}
}
