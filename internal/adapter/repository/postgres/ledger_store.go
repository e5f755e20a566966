package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/txingest/internal/domain"
	"github.com/iho/txingest/internal/infrastructure/postgres/generated"
	"github.com/iho/txingest/internal/usecase"
)

// LedgerStore implements usecase.LedgerStore and usecase.TransactionReader.
type LedgerStore struct {
	queries   *generated.Queries
	txManager usecase.TransactionManager
	retrier   usecase.Retrier
	now       func() time.Time
}

// NewLedgerStore creates a new LedgerStore. Appends run in transactions
// started by txManager, which must hand out *Tx values from this package.
func NewLedgerStore(pool *pgxpool.Pool, txManager usecase.TransactionManager, retrier usecase.Retrier) *LedgerStore {
	return newLedgerStore(pool, txManager, retrier)
}

func newLedgerStore(db generated.DBTX, txManager usecase.TransactionManager, retrier usecase.Retrier) *LedgerStore {
	return &LedgerStore{
		queries:   generated.New(db),
		txManager: txManager,
		retrier:   retrier,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Append claims the source row in the ingestion ledger and inserts the
// transaction in one database transaction. A row claimed by an earlier
// append leaves the store untouched.
func (s *LedgerStore) Append(ctx context.Context, row domain.SourceRow, txn *domain.Transaction) (domain.AppendResult, error) {
	var result domain.AppendResult

	err := s.retrier.Retry(ctx, func() error {
		var err error
		result, err = s.appendOnce(ctx, row, txn)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("%w: append %s: %w", domain.ErrStorageUnavailable, row.ID, err)
	}

	return result, nil
}

func (s *LedgerStore) appendOnce(ctx context.Context, row domain.SourceRow, txn *domain.Transaction) (domain.AppendResult, error) {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return 0, err
	}

	pgxTx, err := unwrapTx(tx)
	if err != nil {
		_ = tx.Rollback(ctx)
		return 0, err
	}
	queries := generated.New(pgxTx)

	claimed, err := queries.ClaimSourceRow(ctx, generated.ClaimSourceRowParams{
		SourceRowID:   row.ID,
		SourceFile:    row.File,
		LineNumber:    int32(row.Line),
		LineHash:      row.Hash,
		TransactionID: txn.ID,
		IngestedAt:    timeToPgTimestamptz(s.now()),
	})
	if err != nil {
		_ = tx.Rollback(ctx)
		return 0, err
	}

	if claimed == 0 {
		_ = tx.Rollback(ctx)
		return domain.AppendAlreadyPresent, nil
	}

	createdAt := txn.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	err = queries.CreateTransaction(ctx, generated.CreateTransactionParams{
		ID:               txn.ID,
		OccurredAt:       timeToPgTimestamptz(txn.Timestamp),
		Customer:         txn.Customer,
		Item:             txn.Item,
		Amount:           decimalToNumeric(txn.Amount),
		Currency:         txn.Currency,
		AmountNormalized: decimalToNumeric(txn.AmountNormalized),
		IsHighValue:      txn.IsHighValue,
		CreatedAt:        timeToPgTimestamptz(createdAt),
	})
	if err != nil {
		_ = tx.Rollback(ctx)
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	return domain.AppendInserted, nil
}

// ListRecent returns up to limit transactions, newest first.
func (s *LedgerStore) ListRecent(ctx context.Context, limit int) ([]*domain.Transaction, error) {
	rows, err := s.queries.ListRecentTransactions(ctx, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("%w: list transactions: %w", domain.ErrStorageUnavailable, err)
	}

	txns := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		txns = append(txns, rowToTransaction(row))
	}

	return txns, nil
}

// DailySummary aggregates transactions per UTC calendar date, newest date first.
func (s *LedgerStore) DailySummary(ctx context.Context) ([]*domain.DailySummary, error) {
	rows, err := s.queries.GetDailySummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: daily summary: %w", domain.ErrStorageUnavailable, err)
	}

	summary := make([]*domain.DailySummary, 0, len(rows))
	for _, row := range rows {
		summary = append(summary, rowToDailySummary(row))
	}

	return summary, nil
}

// Count returns the number of stored transactions.
func (s *LedgerStore) Count(ctx context.Context) (int64, error) {
	n, err := s.queries.CountTransactions(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: count transactions: %w", domain.ErrStorageUnavailable, err)
	}

	return n, nil
}

// IngestionRecord looks up the ledger entry of a source row. It returns
// (nil, nil) when the row has not been ingested.
func (s *LedgerStore) IngestionRecord(ctx context.Context, sourceRowID string) (*domain.IngestionRecord, error) {
	row, err := s.queries.GetIngestionRecord(ctx, sourceRowID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get ingestion record: %w", domain.ErrStorageUnavailable, err)
	}

	return &domain.IngestionRecord{
		SourceRowID:   row.SourceRowID,
		SourceFile:    row.SourceFile,
		LineNumber:    int(row.LineNumber),
		LineHash:      row.LineHash,
		TransactionID: row.TransactionID,
		IngestedAt:    row.IngestedAt.Time.UTC(),
	}, nil
}
