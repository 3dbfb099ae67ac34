package domain

import (
	"math/rand/v2"

	"github.com/google/uuid"
)

// Enemy is server-owned simulation state. It is spawned and advanced by
// the room tick only; clients merely report hits.
type Enemy struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Speed  float64 `json:"speed"`
	Health int     `json:"health"`
	Color  string  `json:"color"`
	Type   string  `json:"type"`
}

// NewEnemy spawns a basic enemy just above the playfield at a random
// column with a random fall speed.
func NewEnemy() Enemy {
	return Enemy{
		ID:     uuid.NewString(),
		X:      rand.Float64() * PlayfieldWidth,
		Y:      EnemySpawnY,
		Width:  EnemySize,
		Height: EnemySize,
		Speed:  EnemySpeedMin + rand.Float64()*(EnemySpeedMax-EnemySpeedMin),
		Health: EnemyHealth,
		Color:  "#ff4444",
		Type:   "basic",
	}
}

// PowerUp drops from destroyed enemies and rides the same authoritative
// snapshot as enemies. Pickup is resolved by the gameplay layer.
type PowerUp struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Speed  float64 `json:"speed"`
	Type   string  `json:"type"`
	Color  string  `json:"color"`
}

var powerUpTypes = []string{"health", "fireRate", "speed", "weapon"}

var powerUpColors = map[string]string{
	"health":   "#00ff00",
	"fireRate": "#ff8800",
	"speed":    "#00ffff",
	"weapon":   "#ff00ff",
}

// NewPowerUp drops a random power-up centered on the given point.
func NewPowerUp(x, y float64) PowerUp {
	t := powerUpTypes[rand.IntN(len(powerUpTypes))]
	return PowerUp{
		ID:     uuid.NewString(),
		X:      x - PowerUpSize/2,
		Y:      y,
		Width:  PowerUpSize,
		Height: PowerUpSize,
		Speed:  PowerUpFallSpeed,
		Type:   t,
		Color:  powerUpColors[t],
	}
}

// Projectile is relayed between clients verbatim; the server keeps no
// projectile state.
type Projectile struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Speed  float64 `json:"speed"`
	Damage int     `json:"damage"`
	Color  string  `json:"color"`
	Owner  string  `json:"owner,omitempty"`
	Type   string  `json:"type,omitempty"`
}
