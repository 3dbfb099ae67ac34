package domain

import "time"

// Gameplay tuning. The playfield is a portrait canvas; enemies fall from
// the top and leave play past PlayfieldExitY.
const (
	MaxPlayers = 4
	StartDelay = 2 * time.Second

	PlayfieldWidth = 800.0
	PlayfieldExitY = 1000.0

	TickSeconds = 1.0 / 60.0

	EnemySpawnY   = -30.0
	EnemySize     = 30.0
	EnemyHealth   = 40
	EnemySpeedMin = 100.0
	EnemySpeedMax = 200.0

	SpawnIntervalMin    = 2 * time.Second
	SpawnIntervalJitter = 3 * time.Second

	KillScore = 100

	PowerUpChance    = 0.3
	PowerUpSize      = 20.0
	PowerUpFallSpeed = 50.0
)
