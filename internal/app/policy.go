package app

import "github.com/veikko/skystrike/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
	DropFrame
)

// Policy decides what to do with a member whose send buffer stayed full
// during a broadcast.
type Policy interface {
	OnBackPressure(sid core.SessionID) BackpressureAction
}

// KickSlowPolicy removes any member that cannot keep up; a client that
// falls a full buffer behind is better off rejoining than replaying a
// stale stream.
type KickSlowPolicy struct{}

func (KickSlowPolicy) OnBackPressure(core.SessionID) BackpressureAction {
	return KickMember
}
