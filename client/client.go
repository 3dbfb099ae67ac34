package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/veikko/skystrike/internal/domain"
)

// UpdateThrottle bounds how often local state is pushed to the relay.
// The server keeps only the latest value per field, so dropped pushes
// are harmless.
const UpdateThrottle = 50 * time.Millisecond

const replyTimeout = 5 * time.Second

// serverEvent is the union of everything the relay can send.
type serverEvent struct {
	Type       string              `json:"type"`
	Message    string              `json:"message,omitempty"`
	RoomCode   string              `json:"roomCode,omitempty"`
	PlayerID   string              `json:"playerId,omitempty"`
	IsHost     bool                `json:"isHost,omitempty"`
	Players    []domain.Player     `json:"players,omitempty"`
	Player     *domain.Player      `json:"player,omitempty"`
	Updates    *domain.PlayerPatch `json:"updates,omitempty"`
	OwnerID    string              `json:"ownerId,omitempty"`
	Projectile *domain.Projectile  `json:"projectile,omitempty"`
	Enemies    []domain.Enemy      `json:"enemies,omitempty"`
	PowerUps   []domain.PowerUp    `json:"powerUps,omitempty"`
	EnemyID    string              `json:"enemyId,omitempty"`
	NewHostID  string              `json:"newHostId,omitempty"`
}

// Client speaks the relay protocol over one websocket connection and
// feeds a World mirror.
type Client struct {
	conn  *websocket.Conn
	world *World
	send  func(v any) error

	writeMu sync.Mutex

	mu       sync.Mutex
	lastSent time.Time
	pending  domain.PlayerPatch
	hasPend  bool
	flushT   *time.Timer
	clock    func() time.Time
	throttle time.Duration
}

// Dial connects to the relay websocket endpoint (ws://host/api/ws).
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial relay: %w", err)
	}
	c := &Client{
		conn:  conn,
		world: NewWorld(),
		clock: time.Now,
	}
	c.send = c.writeJSON
	return c, nil
}

func (c *Client) World() *World { return c.world }

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

// CreateRoom asks the relay for a fresh room and blocks for the reply.
// The name is validated locally; a missing name never reaches the wire.
func (c *Client) CreateRoom(playerName string) (roomCode string, err error) {
	if _, err := domain.NewPlayer("", playerName, true); err != nil {
		return "", err
	}
	if err := c.send(struct {
		Type       string `json:"type"`
		PlayerName string `json:"playerName"`
	}{"createRoom", playerName}); err != nil {
		return "", err
	}
	ev, err := c.awaitReply("roomCreated")
	if err != nil {
		return "", err
	}
	c.world.SetSelf(domain.Player{ID: ev.PlayerID, Name: playerName, IsHost: ev.IsHost, X: 400, Y: 500, Health: 100, Color: "#00ffff"})
	return ev.RoomCode, nil
}

// JoinRoom enters an existing room and installs the roster from the
// reply.
func (c *Client) JoinRoom(roomCode, playerName string) error {
	if _, err := domain.NewPlayer("", playerName, false); err != nil {
		return err
	}
	if err := c.send(struct {
		Type       string `json:"type"`
		RoomCode   string `json:"roomCode"`
		PlayerName string `json:"playerName"`
	}{"joinRoom", roomCode, playerName}); err != nil {
		return err
	}
	ev, err := c.awaitReply("roomJoined")
	if err != nil {
		return err
	}
	c.world.selfIDOnly(ev.PlayerID)
	c.world.ApplyRoster(ev.Players)
	return nil
}

// awaitReply reads until the wanted reply or an error event arrives.
// Unrelated broadcasts received meanwhile are applied to the world so
// nothing is lost during the handshake.
func (c *Client) awaitReply(want string) (*serverEvent, error) {
	deadline := time.Now().Add(replyTimeout)
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}
	defer c.conn.SetReadDeadline(time.Time{})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		var ev serverEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		switch ev.Type {
		case want:
			return &ev, nil
		case "error":
			return nil, errors.New(ev.Message)
		default:
			c.apply(&ev)
		}
	}
}

// Listen pumps server events into the world until the connection drops
// or ctx is canceled.
func (c *Client) Listen(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				return err
			}
			var ev serverEvent
			if err := json.Unmarshal(data, &ev); err != nil {
				log.Debug().Err(err).Str("module", "client").Msg("bad server event")
				continue
			}
			c.apply(&ev)
		}
	}
}

func (c *Client) apply(ev *serverEvent) {
	switch ev.Type {
	case "playerJoined":
		if ev.Player != nil {
			c.world.ApplyPlayerJoined(*ev.Player)
		}
	case "playerLeft":
		c.world.ApplyPlayerLeft(ev.PlayerID, ev.NewHostID)
	case "playerUpdate":
		if ev.Updates != nil {
			c.world.ApplyPlayerUpdate(ev.PlayerID, *ev.Updates)
		}
	case "gameState":
		c.world.ApplyGameState(ev.Enemies, ev.PowerUps)
	case "gameStart":
		c.world.ApplyRoster(ev.Players)
	case "projectile":
		if ev.Projectile != nil {
			c.world.ApplyProjectile(ev.OwnerID, *ev.Projectile)
		}
	case "enemyDestroyed":
		c.world.ApplyEnemyDestroyed(ev.EnemyID)
	case "pong":
	case "error":
		log.Warn().Str("module", "client").Str("message", ev.Message).Msg("server error event")
	}
}

// Update applies the patch locally right away and pushes the coalesced
// pending state to the relay at most once per throttle window.
// Last-write-wins per field. A patch merged inside the window is
// flushed by a trailing timer, so the final position still goes out
// when input stops.
func (c *Client) Update(patch domain.PlayerPatch) error {
	c.world.PredictLocal(patch)

	c.mu.Lock()
	mergePatch(&c.pending, patch)
	c.hasPend = true
	now := c.clock()
	if wait := c.throttleWindow() - now.Sub(c.lastSent); wait > 0 {
		if c.flushT == nil {
			c.flushT = time.AfterFunc(wait, c.flushPending)
		}
		c.mu.Unlock()
		return nil
	}
	return c.flush(now)
}

func (c *Client) throttleWindow() time.Duration {
	if c.throttle > 0 {
		return c.throttle
	}
	return UpdateThrottle
}

// flushPending runs from the trailing timer.
func (c *Client) flushPending() {
	c.mu.Lock()
	if !c.hasPend {
		c.flushT = nil
		c.mu.Unlock()
		return
	}
	_ = c.flush(c.clock())
}

// flush sends the pending patch. Called with c.mu held; unlocks before
// touching the wire.
func (c *Client) flush(now time.Time) error {
	out := c.pending
	c.pending = domain.PlayerPatch{}
	c.hasPend = false
	c.lastSent = now
	if c.flushT != nil {
		c.flushT.Stop()
		c.flushT = nil
	}
	c.mu.Unlock()

	return c.send(struct {
		Type    string             `json:"type"`
		Updates domain.PlayerPatch `json:"updates"`
	}{"playerUpdate", out})
}

// Fire records the projectile locally (prediction) and relays it. The
// echo that may come back is dropped by owner id in the world.
func (c *Client) Fire(p domain.Projectile) error {
	c.world.AddOwnProjectile(p)
	return c.send(struct {
		Type       string            `json:"type"`
		Projectile domain.Projectile `json:"projectile"`
	}{"projectile", p})
}

// HitEnemy reports an enemy kill to the relay.
func (c *Client) HitEnemy(enemyID string) error {
	return c.send(struct {
		Type    string `json:"type"`
		EnemyID string `json:"enemyId"`
	}{"enemyHit", enemyID})
}

// GameOver reports the game-over condition detected by the gameplay
// layer.
func (c *Client) GameOver() error {
	return c.send(struct {
		Type string `json:"type"`
	}{"gameOver"})
}

func (c *Client) Ping() error {
	return c.send(struct {
		Type string `json:"type"`
	}{"ping"})
}

func mergePatch(dst *domain.PlayerPatch, src domain.PlayerPatch) {
	if src.X != nil {
		dst.X = src.X
	}
	if src.Y != nil {
		dst.Y = src.Y
	}
	if src.Health != nil {
		dst.Health = src.Health
	}
	if src.Score != nil {
		dst.Score = src.Score
	}
	if src.Color != nil {
		dst.Color = src.Color
	}
	if src.Weapon != nil {
		dst.Weapon = src.Weapon
	}
}
