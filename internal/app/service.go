// Package app wires the synchronization engine: bootstrap gate, the two
// discovery cycles, the dispatch loop, and the operator command surface.
package app

import (
	"context"
	"sync"
	"time"

	eventqueue "github.com/challwatch/challwatch/internal/adapters/mq/queue"
	"github.com/challwatch/challwatch/internal/adapters/platform"
	repository "github.com/challwatch/challwatch/internal/adapters/repository"
	"github.com/challwatch/challwatch/internal/domain/dedupe"
	"github.com/challwatch/challwatch/internal/domain/rank"
	"github.com/challwatch/challwatch/internal/notify"
	"github.com/challwatch/challwatch/pkg/logger"
)

// Default engine configuration constants.
const (
	defaultChallengePollPeriod = 300 * time.Second
	defaultUserPollPeriod      = 1 * time.Second
	defaultDispatchPeriod      = 1 * time.Second
	defaultBootstrapThreshold  = 300
)

// Source is the read-only platform accessor the engine polls. The platform
// client implements it; tests substitute scripted sources.
type Source interface {
	Challenges(ctx context.Context) ([]platform.ChallengeSnapshot, error)
	Auteur(ctx context.Context, id int) (platform.AuteurSnapshot, error)
	SearchAuteurs(ctx context.Context, name string) ([]platform.AuteurSnapshot, error)
}

// Service owns the engine's shared state and its three periodic activities.
type Service struct {
	mu sync.Mutex

	store    repository.Store
	source   Source
	queue    eventqueue.Queue
	seen     dedupe.SolveSet
	ranker   *rank.Engine
	notifier notify.Notifier
	gate     *Gate

	challengePollPeriod time.Duration
	userPollPeriod      time.Duration
	dispatchPeriod      time.Duration
	bootstrapThreshold  int

	// Round-robin cursor of the user refresh cycle.
	lastRefreshedID int

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithChallengePollPeriod sets the challenge discovery cycle period.
func WithChallengePollPeriod(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.challengePollPeriod = d
		}
	}
}

// WithUserPollPeriod sets the delay between user refresh iterations.
func WithUserPollPeriod(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.userPollPeriod = d
		}
	}
}

// WithDispatchPeriod sets the dispatch loop period.
func WithDispatchPeriod(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.dispatchPeriod = d
		}
	}
}

// WithBootstrapThreshold sets the challenge count below which the store is
// treated as unpopulated.
func WithBootstrapThreshold(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.bootstrapThreshold = n
		}
	}
}

// WithNotifier sets the presentation collaborator.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service over the given store and platform source.
func New(store repository.Store, source Source, opts ...Option) *Service {
	s := &Service{
		store:               store,
		source:              source,
		queue:               eventqueue.NewNotificationQueue(),
		seen:                dedupe.NewSolveSet(),
		gate:                NewGate(),
		challengePollPeriod: defaultChallengePollPeriod,
		userPollPeriod:      defaultUserPollPeriod,
		dispatchPeriod:      defaultDispatchPeriod,
		bootstrapThreshold:  defaultBootstrapThreshold,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Named("engine")
	}
	if s.notifier == nil {
		s.notifier = notify.NewLogNotifier()
	}
	s.ranker = rank.New(store)
	return s
}

// Start runs the bootstrap and launches the three cycles. They run until
// ctx is canceled; there is no other shutdown path in normal operation.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting engine",
		logger.Any("challengePollPeriod", s.challengePollPeriod),
		logger.Any("userPollPeriod", s.userPollPeriod),
		logger.Any("dispatchPeriod", s.dispatchPeriod),
		logger.Int("bootstrapThreshold", s.bootstrapThreshold),
	)

	go s.runBootstrap(ctx)
	go s.challengeCycle(ctx)
	go s.userCycle(ctx)
	go s.dispatchLoop(ctx)

	s.started = true
	return nil
}

// Gate exposes the bootstrap gate for collaborators that must wait on it.
func (s *Service) Gate() *Gate {
	return s.gate
}

// QueueLen reports the pending notification count for stats endpoints.
func (s *Service) QueueLen(ctx context.Context) int {
	return s.queue.Len(ctx)
}
