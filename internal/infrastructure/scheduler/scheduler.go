package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/txingest/internal/domain"
	"github.com/iho/txingest/internal/usecase"
)

// ErrNotRunning is returned by Trigger when the scheduler loop is not active.
var ErrNotRunning = errors.New("scheduler is not running")

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context) (*domain.RunReport, error)
}

type result struct {
	report *domain.RunReport
	err    error
}

type request struct {
	reply chan result
}

// Scheduler runs the pipeline on a fixed interval and on manual request.
// Concurrent attempts are left to the runner to reject.
type Scheduler struct {
	runner     Runner
	interval   time.Duration
	runOnStart bool
	observers  []usecase.RunObserver
	logger     zerolog.Logger

	requests chan request
	done     chan struct{}
	wg       sync.WaitGroup
}

// Config for Scheduler.
type Config struct {
	Runner     Runner
	Interval   time.Duration
	RunOnStart bool
	Observers  []usecase.RunObserver
	Logger     zerolog.Logger
}

// New creates a new Scheduler.
func New(cfg Config) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}

	return &Scheduler{
		runner:     cfg.Runner,
		interval:   cfg.Interval,
		runOnStart: cfg.RunOnStart,
		observers:  cfg.Observers,
		logger:     cfg.Logger.With().Str("component", "scheduler").Logger(),
		requests:   make(chan request),
		done:       make(chan struct{}),
	}
}

// Start runs the scheduling loop until ctx is cancelled. Runs in flight are
// cancelled through ctx and awaited before Start returns.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("scheduler started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	defer func() {
		close(s.done)
		s.wg.Wait()
		s.logger.Info().Msg("scheduler stopped")
	}()

	if s.runOnStart {
		s.spawn(ctx, usecase.TriggerSchedule, nil)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.spawn(ctx, usecase.TriggerSchedule, nil)
		case req := <-s.requests:
			s.spawn(ctx, usecase.TriggerManual, req.reply)
		}
	}
}

// Trigger requests a manual run and waits for its result. The run itself is
// bound to the scheduler lifetime, so cancelling ctx only stops the wait.
func (s *Scheduler) Trigger(ctx context.Context) (*domain.RunReport, error) {
	reply := make(chan result, 1)

	select {
	case s.requests <- request{reply: reply}:
	case <-s.done:
		return nil, ErrNotRunning
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-reply:
		return res.report, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Scheduler) spawn(ctx context.Context, trigger string, reply chan<- result) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		report, err := s.execute(ctx, trigger)
		if reply != nil {
			reply <- result{report: report, err: err}
		}
	}()
}

func (s *Scheduler) execute(ctx context.Context, trigger string) (report *domain.RunReport, err error) {
	log := s.logger.With().Str("trigger", trigger).Logger()

	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("pipeline run panicked: %v", r)
			}
		}()
		report, err = s.runner.Run(ctx)
	}()

	switch {
	case err == nil:
		log.Info().Object("report", report).Msg("pipeline run completed")
	case errors.Is(err, domain.ErrPipelineBusy):
		log.Info().Msg("pipeline run skipped, another run is in progress")
	default:
		event := log.Error().Err(err).Str("outcome", usecase.RunOutcome(err))
		if report != nil {
			event = event.Object("report", report)
		}
		event.Msg("pipeline run failed")
	}

	observeCtx := context.WithoutCancel(ctx)
	for _, o := range s.observers {
		o.ObserveRun(observeCtx, trigger, report, err)
	}

	return report, err
}
