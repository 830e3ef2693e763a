package app

import (
	"context"
	"time"

	"github.com/challwatch/challwatch/internal/domain/model"
	"github.com/challwatch/challwatch/pkg/logger"
	"github.com/challwatch/challwatch/pkg/metrics"
)

// dispatchLoop drains the queue each tick and hands every pending event to
// the notifier. Solves go out before challenge announcements so a solve of
// a just-discovered challenge never precedes its own context.
func (s *Service) dispatchLoop(ctx context.Context) {
	if err := s.gate.Wait(ctx); err != nil {
		return
	}
	s.logger.Info(ctx, "dispatch loop running")

	ticker := time.NewTicker(s.dispatchPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.dispatchPending(ctx)
			return
		case <-ticker.C:
			s.dispatchPending(ctx)
		}
	}
}

// dispatchPending delivers one atomic drain. Failures are per-event: a
// notifier error drops that event and the rest still go out.
func (s *Service) dispatchPending(ctx context.Context) {
	events := s.queue.DrainAll(ctx)
	if len(events) == 0 {
		return
	}

	for _, e := range events {
		if e.Kind == model.KindNewSolve {
			s.dispatchEvent(ctx, e)
		}
	}
	for _, e := range events {
		if e.Kind == model.KindNewChallenge {
			s.dispatchEvent(ctx, e)
		}
	}
}

func (s *Service) dispatchEvent(ctx context.Context, e model.Event) {
	start := time.Now()

	var err error
	switch e.Kind {
	case model.KindNewSolve:
		err = s.notifier.NewSolve(ctx, e.Auteur, e.Challenge, e.FirstBlood, e.Overtake)
	case model.KindNewChallenge:
		err = s.notifier.NewChallenge(ctx, e.Challenge)
	default:
		s.logger.Warn(ctx, "dropping event of unknown kind", logger.Int("kind", int(e.Kind)))
		return
	}

	if err != nil {
		metrics.RecordDispatchFailure()
		s.logger.Error(ctx, "notifier delivery failed",
			logger.String("kind", e.Kind.String()), logger.Error(err))
		return
	}
	metrics.RecordEventDispatched(e.Kind.String())
	metrics.RecordDispatchLatency(time.Since(start).Seconds())
}
