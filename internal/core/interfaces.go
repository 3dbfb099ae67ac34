package core

import "github.com/veikko/skystrike/internal/domain"

// Frame is an encoded wire event.
type Frame []byte

// SessionID is the transport-assigned connection identity.
type SessionID string

// SignalConnection abstracts the per-client message channel.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// MemberSession binds a player record and its transport endpoint.
// This is what a room stores and fans out to.
type MemberSession interface {
	Player() *domain.Player
	Signal() SignalConnection
}

// PublishResult reports delivery stats/backpressure to the caller.
// Dropped members had a full send buffer; delivery is never retried.
type PublishResult struct {
	SentTo  int
	Dropped []SessionID
}

type memberSession struct {
	player *domain.Player
	conn   SignalConnection
}

func NewMemberSession(player *domain.Player, conn SignalConnection) MemberSession {
	return &memberSession{player: player, conn: conn}
}

func (m *memberSession) Player() *domain.Player   { return m.player }
func (m *memberSession) Signal() SignalConnection { return m.conn }
