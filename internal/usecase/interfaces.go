package usecase

import (
	"context"
	"iter"
	"time"

	"github.com/iho/txingest/internal/domain"
)

// LedgerStore persists transactions together with the idempotency ledger.
type LedgerStore interface {
	// Append atomically records the source row and inserts the transaction.
	// If the source row was already recorded nothing is written and
	// domain.AppendAlreadyPresent is returned.
	Append(ctx context.Context, row domain.SourceRow, txn *domain.Transaction) (domain.AppendResult, error)
}

// TransactionReader serves the read-only queries over the store.
type TransactionReader interface {
	ListRecent(ctx context.Context, limit int) ([]*domain.Transaction, error)
	DailySummary(ctx context.Context) ([]*domain.DailySummary, error)
	Count(ctx context.Context) (int64, error)
}

// SourceFile is one discovered input file.
type SourceFile struct {
	Name string
	Path string
}

// SourceLine is one raw line of a source file, numbered from 1.
type SourceLine struct {
	Text   string
	Number int
}

// Source discovers input files and streams their lines.
type Source interface {
	// Discover lists input files in a stable order. exists is false when the
	// input location is missing.
	Discover(ctx context.Context) (files []SourceFile, exists bool, err error)
	// Lines yields the lines of a file lazily; the sequence can be consumed once.
	Lines(file SourceFile) iter.Seq2[SourceLine, error]
}

// RunLock guards pipeline runs across processes.
type RunLock interface {
	// TryAcquire returns acquired=false if another holder owns the lock.
	TryAcquire(ctx context.Context) (release func(context.Context) error, acquired bool, err error)
}

// RunObserver is notified of every run outcome.
type RunObserver interface {
	ObserveRun(ctx context.Context, trigger string, report *domain.RunReport, err error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore remembers the responses of keyed manual trigger requests.
type IdempotencyStore interface {
	// CheckAndSet reserves key. exists reports an earlier reservation, whose
	// stored response (or IdempotencyInFlight) is returned.
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (exists bool, cached []byte, err error)
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier retries operations that failed with transient errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}
