package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Janitor periodically sweeps the coordinator for rooms whose empty grace
// period has elapsed.
type Janitor struct {
	coord    *Coordinator
	interval time.Duration
}

func NewJanitor(coord *Coordinator, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Janitor{coord: coord, interval: interval}
}

// Run blocks until ctx is canceled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	log.Info().Str("module", "app.janitor").Dur("interval", j.interval).Msg("janitor started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.janitor").Msg("janitor stopped")
			return
		case now := <-ticker.C:
			if n := j.coord.Sweep(now); n > 0 {
				log.Info().Str("module", "app.janitor").Int("reaped", n).Msg("swept empty rooms")
			}
		}
	}
}
