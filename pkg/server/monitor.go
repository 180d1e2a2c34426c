package server

import (
	"context"
	"time"

	"github.com/JBibu/zerobyte/pkg/repository"
	"github.com/JBibu/zerobyte/pkg/types"
	"github.com/JBibu/zerobyte/pkg/volume"
	"github.com/rs/zerolog/log"
)

const defaultMonitorInterval = 60 * time.Second

// Monitor periodically probes every mounted volume so state reflects reality
// between explicit operations. Probes skip volumes with an operation in
// flight rather than queueing behind them.
type Monitor struct {
	orchestrator *volume.Orchestrator
	repo         repository.VolumeRepository
	interval     time.Duration
}

func NewMonitor(orchestrator *volume.Orchestrator, repo repository.VolumeRepository, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = defaultMonitorInterval
	}
	return &Monitor{orchestrator: orchestrator, repo: repo, interval: interval}
}

func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", m.interval).Msg("volume health monitor started")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep(ctx)
		}
	}
}

func (m *Monitor) sweep(ctx context.Context) {
	volumes, err := m.repo.ListVolumes(ctx)
	if err != nil {
		log.Error().Err(err).Msg("health monitor failed to list volumes")
		return
	}

	for _, vol := range volumes {
		if m.orchestrator.State(vol).State != types.StateMounted {
			continue
		}

		result := m.orchestrator.Probe(ctx, vol)
		if result.Kind == types.ErrKindBusy {
			continue
		}
		if result.Failed() {
			log.Warn().
				Str("volume", vol.Name).
				Str("kind", string(result.Kind)).
				Str("error", result.Error).
				Msg("volume health check failed")
		}
	}
}
