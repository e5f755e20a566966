package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"

	"github.com/iho/txingest/internal/domain"
	"github.com/iho/txingest/internal/usecase/mocks"
)

func TestTxManagerBegin(t *testing.T) {
	tests := []struct {
		name   string
		finish func(pool pgxmock.PgxPoolIface)
		end    func(tx *Tx, ctx context.Context) error
	}{
		{
			name:   "commit",
			finish: func(pool pgxmock.PgxPoolIface) { pool.ExpectCommit() },
			end:    (*Tx).Commit,
		},
		{
			name:   "rollback",
			finish: func(pool pgxmock.PgxPoolIface) { pool.ExpectRollback() },
			end:    (*Tx).Rollback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := newMockPool(t)
			pool.ExpectBegin()
			tt.finish(pool)

			tx, err := newTxManagerWithPool(pool).Begin(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			pgTx, ok := tx.(*Tx)
			if !ok {
				t.Fatalf("expected *Tx, got %T", tx)
			}
			if pgTx.PgxTx() == nil {
				t.Fatalf("expected underlying pgx transaction")
			}
			if err := tt.end(pgTx, context.Background()); err != nil {
				t.Fatalf("%s failed: %v", tt.name, err)
			}

			assertExpectations(t, pool)
		})
	}
}

func TestTxManagerBeginError(t *testing.T) {
	pool := newMockPool(t)
	beginErr := errors.New("too many connections")
	pool.ExpectBegin().WillReturnError(beginErr)

	tx, err := newTxManagerWithPool(pool).Begin(context.Background())
	if !errors.Is(err, beginErr) {
		t.Fatalf("expected begin error, got err=%v tx=%v", err, tx)
	}
}

func TestLedgerStoreAppendRejectsForeignTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	foreign := mocks.NewMockTransaction(ctrl)
	foreign.EXPECT().Rollback(gomock.Any()).Return(nil)
	manager := mocks.NewMockTransactionManager(ctrl)
	manager.EXPECT().Begin(gomock.Any()).Return(foreign, nil)

	pool := newMockPool(t)
	store := newLedgerStore(pool, manager, NewRetrier(zerolog.Nop()))
	row, txn := sampleRow()

	_, err := store.Append(context.Background(), row, txn)
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected storage unavailable, got %v", err)
	}

	assertExpectations(t, pool)
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func assertExpectations(t *testing.T, pool pgxmock.PgxPoolIface) {
	t.Helper()
	if err := pool.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations were not met: %v", err)
	}
}
