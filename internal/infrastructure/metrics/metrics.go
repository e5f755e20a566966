package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/txingest/internal/domain"
	"github.com/iho/txingest/internal/usecase"
)

const namespace = "txingest"

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// Pipeline metrics
	RunsTotal          *prometheus.CounterVec
	RunDuration        *prometheus.HistogramVec
	FilesScanned       prometheus.Counter
	LinesRead          prometheus.Counter
	LinesSkipped       *prometheus.CounterVec
	RowsInserted       prometheus.Counter
	RowsDeduplicated   prometheus.Counter
	LastSuccessfulRun  prometheus.Gauge
	ManualTriggerCalls *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Authentication metrics
	AuthFailures *prometheus.CounterVec

	// Event metrics
	EventsPublished *prometheus.CounterVec
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pipeline_runs_total",
				Help:      "Pipeline runs by trigger and outcome",
			},
			[]string{"trigger", "outcome"},
		),
		RunDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pipeline_run_duration_seconds",
				Help:      "Duration of completed pipeline runs",
				Buckets:   []float64{.01, .05, .1, .5, 1, 5, 15, 30, 60, 120},
			},
			[]string{"trigger"},
		),
		FilesScanned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_files_scanned_total",
			Help:      "Source files scanned",
		}),
		LinesRead: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_lines_read_total",
			Help:      "Data lines read, excluding headers and blank lines",
		}),
		LinesSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pipeline_lines_skipped_total",
				Help:      "Rejected lines by reason",
			},
			[]string{"reason"},
		),
		RowsInserted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_rows_inserted_total",
			Help:      "Transactions inserted",
		}),
		RowsDeduplicated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_rows_deduplicated_total",
			Help:      "Rows skipped because they were already ingested",
		}),
		LastSuccessfulRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run",
		}),
		ManualTriggerCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pipeline_manual_triggers_total",
				Help:      "Manual trigger requests by HTTP status",
			},
			[]string{"status"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being served",
		}),

		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Requests rejected by the rate limiter",
			},
			[]string{"path"},
		),

		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_failures_total",
				Help:      "Authentication failures by reason",
			},
			[]string{"reason"},
		),

		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Run events handed to the broker",
			},
			[]string{"status"},
		),
	}
}

// ObserveRun implements usecase.RunObserver.
func (m *Metrics) ObserveRun(_ context.Context, trigger string, report *domain.RunReport, err error) {
	m.RunsTotal.WithLabelValues(trigger, usecase.RunOutcome(err)).Inc()

	if report == nil {
		return
	}

	m.RunDuration.WithLabelValues(trigger).Observe(report.Duration.Seconds())
	m.FilesScanned.Add(float64(report.FilesScanned))
	m.LinesRead.Add(float64(report.LinesRead))
	m.RowsInserted.Add(float64(report.Inserted))
	m.RowsDeduplicated.Add(float64(report.Deduplicated))
	for reason, n := range report.SkipReasons {
		m.LinesSkipped.WithLabelValues(string(reason)).Add(float64(n))
	}

	if err == nil {
		m.LastSuccessfulRun.Set(float64(report.StartedAt.Add(report.Duration).Unix()))
	}
}
