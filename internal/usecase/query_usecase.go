package usecase

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"github.com/iho/txingest/internal/domain"
)

// ErrCacheMiss is returned by Cache implementations when a key is absent.
var ErrCacheMiss = errors.New("cache miss")

const dailySummaryCacheKey = "transactions:daily_summary"

// QueryUseCase serves read-only views of the ingested transactions.
type QueryUseCase struct {
	reader TransactionReader
	cache  Cache
	logger zerolog.Logger
}

// NewQueryUseCase creates a new QueryUseCase. cache may be nil.
func NewQueryUseCase(reader TransactionReader, cache Cache, logger zerolog.Logger) *QueryUseCase {
	return &QueryUseCase{
		reader: reader,
		cache:  cache,
		logger: logger.With().Str("component", "query").Logger(),
	}
}

// ListTransactions returns the newest transactions first.
func (uc *QueryUseCase) ListTransactions(ctx context.Context, take int) ([]*domain.Transaction, error) {
	if take <= 0 {
		take = DefaultListTake
	}

	if take > MaxListTake {
		take = MaxListTake
	}

	return uc.reader.ListRecent(ctx, take)
}

// DailySummary returns per-date counts and normalized totals, newest date first.
func (uc *QueryUseCase) DailySummary(ctx context.Context) ([]*domain.DailySummary, error) {
	if uc.cache != nil {
		if cached, ok := uc.cachedSummary(ctx); ok {
			return cached, nil
		}
	}

	summary, err := uc.reader.DailySummary(ctx)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if payload, err := json.Marshal(summary); err == nil {
			if err := uc.cache.Set(ctx, dailySummaryCacheKey, payload, SummaryCacheTTL); err != nil {
				uc.logger.Warn().Err(err).Msg("failed to cache daily summary")
			}
		}
	}

	return summary, nil
}

// CountTransactions returns the number of stored transactions.
func (uc *QueryUseCase) CountTransactions(ctx context.Context) (int64, error) {
	return uc.reader.Count(ctx)
}

// ObserveRun drops the cached summary once a run has inserted new rows.
func (uc *QueryUseCase) ObserveRun(ctx context.Context, _ string, report *domain.RunReport, _ error) {
	if uc.cache == nil || report == nil || report.Inserted == 0 {
		return
	}

	if err := uc.cache.Delete(ctx, dailySummaryCacheKey); err != nil {
		uc.logger.Warn().Err(err).Msg("failed to invalidate daily summary cache")
	}
}

func (uc *QueryUseCase) cachedSummary(ctx context.Context) ([]*domain.DailySummary, bool) {
	payload, err := uc.cache.Get(ctx, dailySummaryCacheKey)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			uc.logger.Warn().Err(err).Msg("failed to read daily summary cache")
		}
		return nil, false
	}

	var summary []*domain.DailySummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		uc.logger.Warn().Err(err).Msg("discarding corrupt daily summary cache entry")
		return nil, false
	}

	return summary, true
}
