package sessionsweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

type Expirer interface {
	ExpireIdleSessions(ctx context.Context) (int, error)
}

// Sweeper removes form drafts that have not been touched for a while.
type Sweeper struct {
	service Expirer
	log     zerolog.Logger
}

func New(service Expirer, log zerolog.Logger) *Sweeper {
	return &Sweeper{
		service: service,
		log:     log,
	}
}

func (s *Sweeper) Run(ctx context.Context, startupDelay, frequency time.Duration) {
	s.log.Info().Dur("sweep_frequency", frequency).Msg("starting session sweeper")

	ticker := time.NewTicker(frequency)
	defer ticker.Stop()

	select {
	case <-time.After(startupDelay):
	case <-ctx.Done():
		return
	}

	s.sweep(ctx)

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-ctx.Done():
			s.log.Info().Msg("stopping session sweeper")
			return
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.RunOnce(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("sweeping sessions")
		return
	}

	s.log.Info().Int("expired", n).Msg("sessions swept")
}

func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	n, err := s.service.ExpireIdleSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("invoking service: %w", err)
	}

	return n, nil
}
