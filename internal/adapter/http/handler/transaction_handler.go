package handler

import (
	"context"
	"net/http"

	"github.com/iho/txingest/internal/adapter/http/dto"
	"github.com/iho/txingest/internal/domain"
	"github.com/iho/txingest/internal/usecase"
)

// TransactionQuery defines the read operations used by TransactionHandler.
type TransactionQuery interface {
	ListTransactions(ctx context.Context, take int) ([]*domain.Transaction, error)
	DailySummary(ctx context.Context) ([]*domain.DailySummary, error)
	CountTransactions(ctx context.Context) (int64, error)
}

// TransactionHandler handles transaction queries.
type TransactionHandler struct {
	query TransactionQuery
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(query TransactionQuery) *TransactionHandler {
	return &TransactionHandler{query: query}
}

// List handles GET /api/v1/transactions.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	take := parseIntQuery(r, "take", usecase.DefaultListTake)

	txns, err := h.query.ListTransactions(r.Context(), take)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.TransactionsFromDomain(txns),
		Count:        len(txns),
	})
}

// Summary handles GET /api/v1/transactions/summary.
func (h *TransactionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	days, err := h.query.DailySummary(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to build daily summary", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DailySummariesFromDomain(days))
}

// Count handles GET /api/v1/transactions/count.
func (h *TransactionHandler) Count(w http.ResponseWriter, r *http.Request) {
	n, err := h.query.CountTransactions(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to count transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CountResponse{Count: n})
}
