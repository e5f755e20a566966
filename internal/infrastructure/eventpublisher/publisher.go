package eventpublisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/txingest/internal/domain"
	"github.com/iho/txingest/internal/infrastructure/metrics"
	"github.com/iho/txingest/internal/usecase"
)

// EventPublisher turns run outcomes into events and publishes them from a
// background worker, so a slow broker never delays the scheduler.
type EventPublisher struct {
	publisher    Publisher
	idGen        usecase.IDGenerator
	metrics      *metrics.Metrics
	logger       zerolog.Logger
	queue        chan *domain.RunCompletedEvent
	drainTimeout time.Duration
	now          func() time.Time
}

// Publisher defines the interface for publishing events to external systems.
type Publisher interface {
	Publish(ctx context.Context, event *domain.RunCompletedEvent) error
}

// Config for EventPublisher.
type Config struct {
	Publisher    Publisher
	IDGenerator  usecase.IDGenerator
	Metrics      *metrics.Metrics // optional
	Logger       zerolog.Logger
	BufferSize   int           // Events held while the broker is slow
	DrainTimeout time.Duration // Time allowed to flush the buffer on shutdown
}

// NewEventPublisher creates a new EventPublisher.
func NewEventPublisher(cfg Config) *EventPublisher {
	if cfg.BufferSize == 0 {
		cfg.BufferSize = 64
	}
	if cfg.DrainTimeout == 0 {
		cfg.DrainTimeout = 5 * time.Second
	}

	return &EventPublisher{
		publisher:    cfg.Publisher,
		idGen:        cfg.IDGenerator,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger.With().Str("component", "event_publisher").Logger(),
		queue:        make(chan *domain.RunCompletedEvent, cfg.BufferSize),
		drainTimeout: cfg.DrainTimeout,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// ObserveRun implements usecase.RunObserver. It never blocks; when the buffer
// is full the event is dropped and logged.
func (ep *EventPublisher) ObserveRun(_ context.Context, trigger string, report *domain.RunReport, err error) {
	event := ep.newEvent(trigger, report, err)

	select {
	case ep.queue <- event:
	default:
		ep.count("dropped")
		ep.logger.Warn().Str("event_id", event.ID).Msg("event buffer full, dropping run event")
	}
}

// Start publishes queued events until ctx is cancelled, then flushes what is
// left within the drain timeout.
func (ep *EventPublisher) Start(ctx context.Context) error {
	ep.logger.Info().Int("buffer_size", cap(ep.queue)).Msg("event publisher started")

	for {
		select {
		case <-ctx.Done():
			ep.drain()
			ep.logger.Info().Msg("event publisher shutting down")
			return ctx.Err()
		case event := <-ep.queue:
			ep.publishEvent(ctx, event)
		}
	}
}

func (ep *EventPublisher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), ep.drainTimeout)
	defer cancel()

	for {
		select {
		case event := <-ep.queue:
			ep.publishEvent(ctx, event)
		default:
			return
		}
	}
}

func (ep *EventPublisher) publishEvent(ctx context.Context, event *domain.RunCompletedEvent) {
	if err := ep.publisher.Publish(ctx, event); err != nil {
		ep.count("failed")
		ep.logger.Error().Err(err).Str("event_id", event.ID).Msg("failed to publish event")
		return
	}

	ep.count("published")
	ep.logger.Debug().Str("event_id", event.ID).Str("outcome", event.Outcome).Msg("event published")
}

func (ep *EventPublisher) count(status string) {
	if ep.metrics != nil {
		ep.metrics.EventsPublished.WithLabelValues(status).Inc()
	}
}

func (ep *EventPublisher) newEvent(trigger string, report *domain.RunReport, err error) *domain.RunCompletedEvent {
	event := &domain.RunCompletedEvent{
		ID:         ep.idGen.Generate(),
		Trigger:    trigger,
		Outcome:    usecase.RunOutcome(err),
		OccurredAt: ep.now(),
	}
	if err != nil {
		event.Error = err.Error()
	}

	if report != nil {
		startedAt := report.StartedAt
		event.StartedAt = &startedAt
		event.DurationMS = report.Duration.Milliseconds()
		event.FilesScanned = report.FilesScanned
		event.LinesRead = report.LinesRead
		event.LinesSkipped = report.LinesSkipped
		event.Inserted = report.Inserted
		event.Deduplicated = report.Deduplicated
		if len(report.SkipReasons) > 0 {
			event.SkipReasons = make(map[domain.RejectReason]int, len(report.SkipReasons))
			for reason, n := range report.SkipReasons {
				event.SkipReasons[reason] = n
			}
		}
	}

	return event
}

// LogPublisher is a publisher that only logs events. It is used when no
// broker is configured.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event.
func (p *LogPublisher) Publish(_ context.Context, event *domain.RunCompletedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	p.logger.Info().
		Str("event_id", event.ID).
		Str("event_type", domain.EventTypeRunCompleted).
		RawJSON("payload", payload).
		Msg("event published")

	return nil
}
