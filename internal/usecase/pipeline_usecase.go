package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/txingest/internal/domain"
)

// PipelineUseCase coordinates ingestion runs: it discovers source files, streams
// their rows through parsing and enrichment, and appends them to the ledger.
// At most one run executes at a time.
type PipelineUseCase struct {
	source  Source
	store   LedgerStore
	fx      domain.FxTable
	idGen   IDGenerator
	lock    RunLock
	logger  zerolog.Logger
	now     func() time.Time
	running atomic.Bool
}

// PipelineOption customizes a PipelineUseCase.
type PipelineOption func(*PipelineUseCase)

// WithRunLock adds a cross-process lock that every run must hold.
func WithRunLock(lock RunLock) PipelineOption {
	return func(uc *PipelineUseCase) {
		uc.lock = lock
	}
}

// WithClock overrides the clock used for report timing.
func WithClock(now func() time.Time) PipelineOption {
	return func(uc *PipelineUseCase) {
		uc.now = now
	}
}

// NewPipelineUseCase creates a new PipelineUseCase.
func NewPipelineUseCase(
	source Source,
	store LedgerStore,
	fx domain.FxTable,
	idGen IDGenerator,
	logger zerolog.Logger,
	opts ...PipelineOption,
) *PipelineUseCase {
	uc := &PipelineUseCase{
		source: source,
		store:  store,
		fx:     fx,
		idGen:  idGen,
		logger: logger.With().Str("component", "pipeline").Logger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Running reports whether a run is currently in progress in this process.
func (uc *PipelineUseCase) Running() bool {
	return uc.running.Load()
}

// Run executes one ingestion run. It fails fast with domain.ErrPipelineBusy when
// another run is in progress. On storage failure, unreadable sources or
// cancellation it returns the partial report together with the error.
func (uc *PipelineUseCase) Run(ctx context.Context) (*domain.RunReport, error) {
	if !uc.running.CompareAndSwap(false, true) {
		return nil, domain.ErrPipelineBusy
	}
	defer uc.running.Store(false)

	if uc.lock != nil {
		release, acquired, err := uc.lock.TryAcquire(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("%w: %w", domain.ErrRunCancelled, ctxErr)
			}
			return nil, fmt.Errorf("failed to acquire run lock: %w", err)
		}
		if !acquired {
			return nil, domain.ErrPipelineBusy
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				uc.logger.Warn().Err(err).Msg("failed to release run lock")
			}
		}()
	}

	report := domain.NewRunReport(uc.now())
	err := uc.run(ctx, report)
	report.Finish(uc.now())

	return report, err
}

func (uc *PipelineUseCase) run(ctx context.Context, report *domain.RunReport) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrRunCancelled, err)
	}

	files, exists, err := uc.source.Discover(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %w", domain.ErrRunCancelled, ctxErr)
		}
		return fmt.Errorf("%w: %w", domain.ErrSourceUnreadable, err)
	}
	if !exists {
		uc.logger.Info().Msg("input location does not exist, nothing to do")
		return nil
	}
	if len(files) == 0 {
		uc.logger.Info().Msg("no source files found")
		return nil
	}

	uc.logger.Debug().Int("files", len(files)).Msg("starting run")

	for _, file := range files {
		report.FilesScanned++
		if err := uc.ingestFile(ctx, file, report); err != nil {
			return err
		}
	}

	return nil
}

func (uc *PipelineUseCase) ingestFile(ctx context.Context, file SourceFile, report *domain.RunReport) error {
	log := uc.logger.With().Str("file", file.Name).Logger()
	log.Debug().Msg("processing file")

	for line, err := range uc.source.Lines(file) {
		if err != nil {
			return fmt.Errorf("%w: %s: %w", domain.ErrSourceUnreadable, file.Name, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %w", domain.ErrRunCancelled, ctxErr)
		}

		// The first line is always a header.
		if line.Number == 1 || domain.IsBlankLine(line.Text) {
			continue
		}
		report.LinesRead++

		row, err := domain.ParseRow(line.Text)
		if err != nil {
			var rejection *domain.RowRejection
			if !errors.As(err, &rejection) {
				return err
			}
			report.Skip(rejection.Reason)
			log.Debug().Int("line", line.Number).Str("reason", string(rejection.Reason)).Msg("row skipped")
			continue
		}

		txn := uc.fx.Enrich(row)
		txn.ID = uc.idGen.Generate()
		txn.CreatedAt = report.StartedAt

		result, err := uc.append(ctx, newSourceRow(file, line), &txn)
		if err != nil {
			return err
		}
		report.Record(result)
	}

	return nil
}

// append writes one row on a context detached from run cancellation.
func (uc *PipelineUseCase) append(ctx context.Context, row domain.SourceRow, txn *domain.Transaction) (domain.AppendResult, error) {
	appendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DefaultAppendTimeout)
	defer cancel()

	result, err := uc.store.Append(appendCtx, row, txn)
	if err != nil {
		if errors.Is(err, domain.ErrStorageUnavailable) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}

	return result, nil
}

// newSourceRow derives the idempotency key of a physical line from the file
// name and line number.
func newSourceRow(file SourceFile, line SourceLine) domain.SourceRow {
	sum := sha256.Sum256([]byte(line.Text))

	return domain.SourceRow{
		ID:   fmt.Sprintf("%s#L%d", file.Name, line.Number),
		File: file.Name,
		Line: line.Number,
		Hash: hex.EncodeToString(sum[:]),
	}
}
