package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/veikko/skystrike/internal/core"
)

// Loop is the single simulation driver: one fixed-rate ticker advancing
// every live room in sequence. Rooms never run their own timelines, so
// no cross-room locking exists beyond the registry read. Members a tick
// could not deliver to are handed to onDropped for the backpressure
// policy; a nil onDropped just logs them.
func Loop(ctx context.Context, rooms *core.Registry, tickRate int, onDropped func(*core.Room, core.PublishResult)) {
	if tickRate <= 0 {
		tickRate = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()
	log.Info().Str("module", "app.loop").Int("tick_rate", tickRate).Msg("tick loop started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.loop").Msg("tick loop stopped")
			return
		case now := <-ticker.C:
			rooms.ForEach(func(r *core.Room) {
				res := r.Tick(now)
				if len(res.Dropped) == 0 {
					return
				}
				if onDropped != nil {
					onDropped(r, res)
					return
				}
				log.Warn().Str("module", "app.loop").Str("room", string(r.Code())).Int("dropped", len(res.Dropped)).Msg("tick drops with no backpressure handler")
			})
		}
	}
}
