// Package domain contains entities without logic, just meta-data.
package domain

import (
	"errors"
	"math/rand/v2"
)

const MaxNameLen = 36

var (
	ErrNameEmpty   = errors.New("player name empty")
	ErrNameTooLong = errors.New("player name too long")
)

// joinColors is the palette non-host players are assigned from.
var joinColors = []string{"#ff0000", "#00ff00", "#0000ff", "#ffff00", "#ff00ff", "#00ffff"}

// Player is the per-member record a room stores. Position, health and
// score are whatever the owning client last reported.
type Player struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	IsHost bool    `json:"isHost"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Health int     `json:"health"`
	Score  int     `json:"score"`
	Color  string  `json:"color"`
	Weapon string  `json:"weaponType,omitempty"`
}

// NewPlayer validates the display name and places the player at its
// spawn point. The room creator spawns centered in cyan, joiners get a
// jittered spawn and a palette color.
func NewPlayer(id, name string, host bool) (*Player, error) {
	if len(name) == 0 {
		return nil, ErrNameEmpty
	}
	if len(name) > MaxNameLen {
		return nil, ErrNameTooLong
	}
	p := &Player{
		ID:     id,
		Name:   name,
		X:      400,
		Y:      500,
		Health: 100,
		Color:  "#00ffff",
	}
	if !host {
		p.X = 300 + rand.Float64()*200
		p.Color = joinColors[rand.IntN(len(joinColors))]
	}
	return p, nil
}

// PlayerPatch is the enumerated set of fields a client may update.
// Nil pointers mean "leave unchanged"; unknown JSON fields are dropped
// on decode instead of merged.
type PlayerPatch struct {
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
	Health *int     `json:"health,omitempty"`
	Score  *int     `json:"score,omitempty"`
	Color  *string  `json:"color,omitempty"`
	Weapon *string  `json:"weaponType,omitempty"`
}

// Apply merges the set fields of the patch into the player record.
func (p *Player) Apply(patch PlayerPatch) {
	if patch.X != nil {
		p.X = *patch.X
	}
	if patch.Y != nil {
		p.Y = *patch.Y
	}
	if patch.Health != nil {
		p.Health = *patch.Health
	}
	if patch.Score != nil {
		p.Score = *patch.Score
	}
	if patch.Color != nil {
		p.Color = *patch.Color
	}
	if patch.Weapon != nil {
		p.Weapon = *patch.Weapon
	}
}
