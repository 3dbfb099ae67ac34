// Package relay decodes inbound client events, routes them through the
// session directory to the owning room and re-encodes outbound
// broadcasts.
package relay

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/veikko/skystrike/internal/app"
	"github.com/veikko/skystrike/internal/core"
)

var ErrBackpressure = errors.New("backpressure")

const (
	createLimit  = 5
	createWindow = 10 * time.Second
)

type Controller struct {
	Rooms    *core.Registry
	Sessions *app.Directory
	Policy   app.Policy

	limiter   *RateLimiter
	readLimit int64
}

func NewController(rooms *core.Registry, sessions *app.Directory, policy app.Policy, readLimit int64) *Controller {
	return &Controller{
		Rooms:     rooms,
		Sessions:  sessions,
		Policy:    policy,
		limiter:   NewRateLimiter(createLimit, createWindow),
		readLimit: readLimit,
	}
}

// WsConn wraps one websocket connection with a buffered outbound
// channel. TrySend never blocks; a full buffer is a backpressure error.
type WsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWS upgrades the connection and starts the pumps. Nothing is
// allocated in any room until a createRoom or joinRoom event arrives.
// The session id is minted per connection: the browser cookie is shared
// across tabs, and a shared id would let one tab's disconnect tear down
// another tab's membership.
func (ctl *Controller) HandleWS(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(uuid.NewString())
	log.Info().Str("module", "relay").Str("sid", string(sid)).Str("client", c.GetString("client_token")).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "relay").Msg("ws upgrade")
		return
	}
	if ctl.readLimit > 0 {
		ws.SetReadLimit(ctl.readLimit)
	}

	conn := &WsConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go func() {
		defer cancel()
		ctl.readPump(ctx, sid, conn)
	}()
}

// leave runs the full disconnect path for a session: membership drop,
// host handoff broadcast, empty-room destruction, directory unbind.
func (ctl *Controller) leave(sid core.SessionID) {
	code, ok := ctl.Sessions.Lookup(sid)
	if !ok {
		return
	}
	ctl.Sessions.Unbind(sid)
	room, ok := ctl.Rooms.Get(code)
	if !ok {
		return
	}
	newHost, empty := room.RemoveMember(sid)
	if empty {
		ctl.Rooms.Destroy(code)
		return
	}
	ctl.broadcast(room, struct {
		Type      string `json:"type"`
		PlayerID  string `json:"playerId"`
		NewHostID string `json:"newHostId,omitempty"`
	}{"playerLeft", string(sid), string(newHost)}, "")
}

// KickDropped applies the backpressure policy to members a broadcast
// could not reach. The tick loop calls it for snapshot drops; the relay
// calls it for its own fan-outs.
func (ctl *Controller) KickDropped(room *core.Room, res core.PublishResult) {
	for _, sid := range res.Dropped {
		if ctl.Policy == nil || ctl.Policy.OnBackPressure(sid) != app.KickMember {
			continue
		}
		log.Warn().Str("module", "relay").Str("sid", string(sid)).Msg("kicking slow member")
		if ms, ok := room.Member(sid); ok {
			ms.Signal().Close()
		}
		ctl.leave(sid)
	}
}
