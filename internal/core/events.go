package core

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/veikko/skystrike/internal/domain"
)

// Events the room emits on its own authority. Relay-originated events
// (playerUpdate, projectile, ...) are shaped in the relay adapter.

type gameStateEvent struct {
	Type     string           `json:"type"`
	Enemies  []domain.Enemy   `json:"enemies"`
	PowerUps []domain.PowerUp `json:"powerUps"`
}

type gameStartEvent struct {
	Type    string          `json:"type"`
	Players []domain.Player `json:"players"`
}

type enemyDestroyedEvent struct {
	Type     string `json:"type"`
	EnemyID  string `json:"enemyId"`
	PlayerID string `json:"playerId"`
}

func encode(v any) (Frame, bool) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "core.events").Msg("encode event")
		return nil, false
	}
	return b, true
}
