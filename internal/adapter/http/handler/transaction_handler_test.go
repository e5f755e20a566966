package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/txingest/internal/adapter/http/dto"
	"github.com/iho/txingest/internal/domain"
	"github.com/iho/txingest/internal/usecase"
)

type queryStub struct {
	listFn    func(ctx context.Context, take int) ([]*domain.Transaction, error)
	summaryFn func(ctx context.Context) ([]*domain.DailySummary, error)
	countFn   func(ctx context.Context) (int64, error)
}

func (s *queryStub) ListTransactions(ctx context.Context, take int) ([]*domain.Transaction, error) {
	return s.listFn(ctx, take)
}

func (s *queryStub) DailySummary(ctx context.Context) ([]*domain.DailySummary, error) {
	return s.summaryFn(ctx)
}

func (s *queryStub) CountTransactions(ctx context.Context) (int64, error) {
	return s.countFn(ctx)
}

func TestTransactionHandler_List(t *testing.T) {
	var gotTake int
	h := NewTransactionHandler(&queryStub{
		listFn: func(ctx context.Context, take int) ([]*domain.Transaction, error) {
			gotTake = take
			return []*domain.Transaction{
				{ID: "t2", Customer: "Eve", AmountNormalized: decimal.RequireFromString("2200.00"), IsHighValue: true},
				{ID: "t1", Customer: "Bob", AmountNormalized: decimal.RequireFromString("28.00")},
			}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/transactions?take=2", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotTake != 2 {
		t.Fatalf("expected take=2, got %d", gotTake)
	}

	var resp dto.ListTransactionsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 2 || resp.Transactions[0].ID != "t2" || !resp.Transactions[0].IsHighValue {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestTransactionHandler_List_DefaultTake(t *testing.T) {
	var gotTake int
	h := NewTransactionHandler(&queryStub{
		listFn: func(ctx context.Context, take int) ([]*domain.Transaction, error) {
			gotTake = take
			return nil, nil
		},
	})

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil))

	if gotTake != usecase.DefaultListTake {
		t.Fatalf("expected default take, got %d", gotTake)
	}

	var resp dto.ListTransactionsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Transactions == nil || len(resp.Transactions) != 0 {
		t.Fatalf("expected an empty list, got %+v", resp.Transactions)
	}
}

func TestTransactionHandler_Summary(t *testing.T) {
	h := NewTransactionHandler(&queryStub{
		summaryFn: func(ctx context.Context) ([]*domain.DailySummary, error) {
			return []*domain.DailySummary{
				{Date: time.Date(2025, 11, 25, 0, 0, 0, 0, time.UTC), Count: 1, Total: decimal.RequireFromString("2200")},
				{Date: time.Date(2025, 11, 24, 0, 0, 0, 0, time.UTC), Count: 2, Total: decimal.RequireFromString("33")},
			}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.Summary(rec, httptest.NewRequest(http.MethodGet, "/api/v1/transactions/summary", nil))

	var resp []dto.DailySummaryResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp) != 2 || resp[0].Date != "2025-11-25" || resp[0].Total != "2200.00" || resp[1].Count != 2 {
		t.Fatalf("unexpected summary: %+v", resp)
	}
}

func TestTransactionHandler_StorageErrors(t *testing.T) {
	storageErr := fmt.Errorf("%w: connection refused", domain.ErrStorageUnavailable)
	h := NewTransactionHandler(&queryStub{
		listFn:    func(ctx context.Context, take int) ([]*domain.Transaction, error) { return nil, storageErr },
		summaryFn: func(ctx context.Context) ([]*domain.DailySummary, error) { return nil, storageErr },
		countFn:   func(ctx context.Context) (int64, error) { return 0, storageErr },
	})

	for name, fn := range map[string]http.HandlerFunc{"list": h.List, "summary": h.Summary, "count": h.Count} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			fn(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			if rec.Code != http.StatusServiceUnavailable {
				t.Fatalf("expected 503, got %d", rec.Code)
			}
		})
	}
}

func TestTransactionHandler_Count(t *testing.T) {
	h := NewTransactionHandler(&queryStub{
		countFn: func(ctx context.Context) (int64, error) { return 12, nil },
	})

	rec := httptest.NewRecorder()
	h.Count(rec, httptest.NewRequest(http.MethodGet, "/api/v1/transactions/count", nil))

	var resp dto.CountResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 12 {
		t.Fatalf("expected 12, got %d", resp.Count)
	}
}
