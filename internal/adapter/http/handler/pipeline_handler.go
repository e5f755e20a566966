package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/iho/txingest/internal/adapter/http/dto"
	"github.com/iho/txingest/internal/domain"
	"github.com/iho/txingest/internal/infrastructure/metrics"
	"github.com/iho/txingest/internal/usecase"
)

// PipelineTrigger starts a manual pipeline run and waits for its report.
type PipelineTrigger interface {
	Trigger(ctx context.Context) (*domain.RunReport, error)
}

// PipelineHandler handles manual pipeline triggers.
type PipelineHandler struct {
	trigger PipelineTrigger
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewPipelineHandler creates a new PipelineHandler. m may be nil.
func NewPipelineHandler(trigger PipelineTrigger, m *metrics.Metrics, logger zerolog.Logger) *PipelineHandler {
	return &PipelineHandler{
		trigger: trigger,
		metrics: m,
		logger:  logger,
	}
}

// Run handles POST /api/v1/pipeline/run.
func (h *PipelineHandler) Run(w http.ResponseWriter, r *http.Request) {
	report, err := h.trigger.Trigger(r.Context())
	if err != nil {
		status := mapDomainError(err)
		h.count(status)

		if status >= http.StatusInternalServerError {
			h.logger.Error().Err(err).Int("status", status).Msg("manual pipeline run failed")
		}

		writeJSON(w, status, dto.ErrorResponse{
			Error:   http.StatusText(status),
			Message: err.Error(),
			Outcome: usecase.RunOutcome(err),
			Report:  dto.RunReportFromDomain(report),
		})
		return
	}

	h.count(http.StatusOK)
	writeJSON(w, http.StatusOK, dto.TriggerRunResponse{
		Inserted: report.Inserted,
		Report:   dto.RunReportFromDomain(report),
	})
}

func (h *PipelineHandler) count(status int) {
	if h.metrics != nil {
		h.metrics.ManualTriggerCalls.WithLabelValues(strconv.Itoa(status)).Inc()
	}
}
