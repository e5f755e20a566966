package usecase

import (
	"errors"

	"github.com/iho/txingest/internal/domain"
)

// Run outcomes, used as metric labels and event fields.
const (
	OutcomeSuccess            = "success"
	OutcomeBusy               = "busy"
	OutcomeStorageUnavailable = "storage_unavailable"
	OutcomeSourceUnreadable   = "source_unreadable"
	OutcomeCancelled          = "cancelled"
	OutcomeError              = "error"
)

// RunOutcome classifies the error returned by PipelineUseCase.Run.
func RunOutcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, domain.ErrPipelineBusy):
		return OutcomeBusy
	case errors.Is(err, domain.ErrRunCancelled):
		return OutcomeCancelled
	case errors.Is(err, domain.ErrStorageUnavailable):
		return OutcomeStorageUnavailable
	case errors.Is(err, domain.ErrSourceUnreadable):
		return OutcomeSourceUnreadable
	default:
		return OutcomeError
	}
}
