package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/grievease/petition-client-go/internal/store"
)

// MaintenanceJob periodically trims the local state database: stale
// petition snapshots and an expired persisted session. It runs for the
// lifetime of long-lived commands such as the live watch.
type MaintenanceJob struct {
	cache    store.PetitionCache
	sessions store.SessionStore
	cacheTTL time.Duration
	interval time.Duration
	done     chan struct{}
}

func NewMaintenanceJob(cache store.PetitionCache, sessions store.SessionStore, cacheTTL, interval time.Duration) *MaintenanceJob {
	return &MaintenanceJob{
		cache:    cache,
		sessions: sessions,
		cacheTTL: cacheTTL,
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (j *MaintenanceJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("maintenance job started")
}

func (j *MaintenanceJob) Stop() {
	close(j.done)
	log.Info().Msg("maintenance job stopped")
}

func (j *MaintenanceJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.sweep()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *MaintenanceJob) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pruned, err := j.cache.PruneStale(ctx, j.cacheTTL)
	if err != nil {
		log.Error().Err(err).Msg("failed to prune petition cache")
	} else if pruned > 0 {
		log.Info().Int64("count", pruned).Msg("pruned stale petition snapshots")
	}

	if err := j.sessions.DeleteExpired(ctx); err != nil {
		log.Error().Err(err).Msg("failed to delete expired session")
	}
}
