package postgres

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/iho/txingest/internal/domain"
	pginfra "github.com/iho/txingest/internal/infrastructure/postgres"
)

func migrationsDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("failed to resolve test file location")
	}
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "migrations")
}

func startPostgresContainer(t *testing.T, ctx context.Context) string {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "txingest",
			"POSTGRES_PASSWORD": "txingest",
			"POSTGRES_DB":       "txingest",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get postgres host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("failed to get postgres port: %v", err)
	}

	return fmt.Sprintf("postgres://txingest:txingest@%s:%s/txingest?sslmode=disable", host, port.Port())
}

func TestLedgerStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	dbURL := startPostgresContainer(t, ctx)

	if err := pginfra.RunMigrations(dbURL, migrationsDir(t), zerolog.Nop()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	pool, err := pginfra.NewPool(ctx, dbURL, 10, 1)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	defer pool.Close()

	store := NewLedgerStore(pool, NewTxManager(pool), NewRetrier(zerolog.Nop()))
	ids := NewULIDGenerator()

	newTxn := func(customer string, ts time.Time, normalized string) *domain.Transaction {
		return &domain.Transaction{
			ID:               ids.Generate(),
			Timestamp:        ts,
			Customer:         customer,
			Item:             "item",
			Amount:           decimal.RequireFromString(normalized),
			Currency:         "USD",
			AmountNormalized: decimal.RequireFromString(normalized),
			IsHighValue:      decimal.RequireFromString(normalized).GreaterThanOrEqual(domain.HighValueThreshold),
		}
	}

	day1 := time.Date(2025, 11, 24, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 11, 25, 23, 30, 0, 0, time.UTC)

	appends := []struct {
		row domain.SourceRow
		txn *domain.Transaction
	}{
		{domain.SourceRow{ID: "a.csv#L2", File: "a.csv", Line: 2, Hash: "h2"}, newTxn("Ann", day1, "5.00")},
		{domain.SourceRow{ID: "a.csv#L3", File: "a.csv", Line: 3, Hash: "h3"}, newTxn("Ben", day1.Add(time.Hour), "150.25")},
		{domain.SourceRow{ID: "b.csv#L2", File: "b.csv", Line: 2, Hash: "h4"}, newTxn("Cid", day2, "28.00")},
	}

	for _, a := range appends {
		result, err := store.Append(ctx, a.row, a.txn)
		if err != nil {
			t.Fatalf("append %s: %v", a.row.ID, err)
		}
		if result != domain.AppendInserted {
			t.Fatalf("append %s: expected inserted, got %s", a.row.ID, result)
		}
	}

	// Replaying a claimed row with a fresh transaction ID must not insert.
	result, err := store.Append(ctx, appends[0].row, newTxn("Ann", day1, "5.00"))
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if result != domain.AppendAlreadyPresent {
		t.Fatalf("replay: expected already_present, got %s", result)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 transactions, got %d", count)
	}

	recent, err := store.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recent) != 2 || recent[0].Customer != "Cid" || recent[1].Customer != "Ben" {
		t.Fatalf("unexpected listing order: %+v", recent)
	}

	summary, err := store.DailySummary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(summary) != 2 {
		t.Fatalf("expected 2 days, got %d", len(summary))
	}
	if !summary[0].Date.Equal(time.Date(2025, 11, 25, 0, 0, 0, 0, time.UTC)) || summary[0].Count != 1 {
		t.Fatalf("unexpected newest day: %+v", summary[0])
	}
	if summary[1].Count != 2 || !summary[1].Total.Equal(decimal.RequireFromString("155.25")) {
		t.Fatalf("unexpected oldest day: %+v", summary[1])
	}

	record, err := store.IngestionRecord(ctx, "a.csv#L3")
	if err != nil {
		t.Fatalf("ingestion record: %v", err)
	}
	if record == nil || record.TransactionID != appends[1].txn.ID || record.LineNumber != 3 {
		t.Fatalf("unexpected ingestion record: %+v", record)
	}
}

func TestLedgerStoreIntegrationConcurrentAppends(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	dbURL := startPostgresContainer(t, ctx)

	if err := pginfra.RunMigrations(dbURL, migrationsDir(t), zerolog.Nop()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	pool, err := pginfra.NewPool(ctx, dbURL, 10, 1)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	defer pool.Close()

	store := NewLedgerStore(pool, NewTxManager(pool), NewRetrier(zerolog.Nop()))
	ids := NewULIDGenerator()
	row := domain.SourceRow{ID: "race.csv#L2", File: "race.csv", Line: 2, Hash: "h"}

	const writers = 8
	results := make([]domain.AppendResult, writers)
	errs := make([]error, writers)

	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = store.Append(ctx, row, &domain.Transaction{
				ID:               ids.Generate(),
				Timestamp:        time.Now().UTC(),
				Customer:         "racer",
				Item:             "item",
				Amount:           decimal.NewFromInt(1),
				Currency:         "USD",
				AmountNormalized: decimal.NewFromInt(1),
			})
		}()
	}
	wg.Wait()

	inserted := 0
	for i := range writers {
		if errs[i] != nil {
			t.Fatalf("writer %d: %v", i, errs[i])
		}
		if results[i] == domain.AppendInserted {
			inserted++
		}
	}
	if inserted != 1 {
		t.Fatalf("expected exactly one insert, got %d", inserted)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 transaction, got %d", count)
	}
}

func TestLedgerStoreIntegrationLargestAmount(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	dbURL := startPostgresContainer(t, ctx)

	if err := pginfra.RunMigrations(dbURL, migrationsDir(t), zerolog.Nop()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	pool, err := pginfra.NewPool(ctx, dbURL, 10, 1)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	defer pool.Close()

	store := NewLedgerStore(pool, NewTxManager(pool), NewRetrier(zerolog.Nop()))

	parsed, err := domain.ParseRow("2025-11-24T11:00:00Z,Zed,Yacht,9999999999999999999999999999,EUR")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	txn := domain.DefaultFxTable().Enrich(parsed)
	txn.ID = NewULIDGenerator().Generate()

	row := domain.SourceRow{ID: "big.csv#L2", File: "big.csv", Line: 2, Hash: "h"}
	result, err := store.Append(ctx, row, &txn)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if result != domain.AppendInserted {
		t.Fatalf("expected inserted, got %s", result)
	}

	recent, err := store.ListRecent(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recent) != 1 || !recent[0].AmountNormalized.Equal(txn.AmountNormalized) {
		t.Fatalf("expected normalized %s, got %+v", txn.AmountNormalized, recent)
	}
}
