package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/txingest/internal/domain"
)

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID               string          `json:"id"`
	Timestamp        time.Time       `json:"timestamp"`
	Customer         string          `json:"customer"`
	Item             string          `json:"item"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	AmountNormalized decimal.Decimal `json:"amount_normalized"`
	IsHighValue      bool            `json:"is_high_value"`
	CreatedAt        time.Time       `json:"created_at"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:               t.ID,
		Timestamp:        t.Timestamp,
		Customer:         t.Customer,
		Item:             t.Item,
		Amount:           t.Amount,
		Currency:         t.Currency,
		AmountNormalized: t.AmountNormalized,
		IsHighValue:      t.IsHighValue,
		CreatedAt:        t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txns []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txns))
	for i, t := range txns {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// ListTransactionsResponse is returned by the transaction listing.
type ListTransactionsResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Count        int                    `json:"count"`
}

// DailySummaryResponse is one day of the daily summary.
type DailySummaryResponse struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
	Total string `json:"total"`
}

// DailySummariesFromDomain converts domain summaries to responses. Totals are
// rendered with two decimals.
func DailySummariesFromDomain(days []*domain.DailySummary) []*DailySummaryResponse {
	result := make([]*DailySummaryResponse, len(days))
	for i, d := range days {
		result[i] = &DailySummaryResponse{
			Date:  d.Date.Format(time.DateOnly),
			Count: d.Count,
			Total: d.Total.StringFixed(2),
		}
	}
	return result
}

// CountResponse carries a total count.
type CountResponse struct {
	Count int64 `json:"count"`
}

// RunReportResponse represents a pipeline run report in API responses.
type RunReportResponse struct {
	StartedAt    time.Time      `json:"started_at"`
	DurationMS   int64          `json:"duration_ms"`
	FilesScanned int            `json:"files_scanned"`
	LinesRead    int            `json:"lines_read"`
	LinesSkipped int            `json:"lines_skipped"`
	Inserted     int            `json:"inserted"`
	Deduplicated int            `json:"deduplicated"`
	SkipReasons  map[string]int `json:"skip_reasons"`
}

// RunReportFromDomain converts a run report to a response. A nil report
// yields nil.
func RunReportFromDomain(r *domain.RunReport) *RunReportResponse {
	if r == nil {
		return nil
	}

	reasons := make(map[string]int, len(r.SkipReasons))
	for reason, n := range r.SkipReasons {
		reasons[string(reason)] = n
	}

	return &RunReportResponse{
		StartedAt:    r.StartedAt,
		DurationMS:   r.Duration.Milliseconds(),
		FilesScanned: r.FilesScanned,
		LinesRead:    r.LinesRead,
		LinesSkipped: r.LinesSkipped,
		Inserted:     r.Inserted,
		Deduplicated: r.Deduplicated,
		SkipReasons:  reasons,
	}
}

// TriggerRunResponse is returned by a successful manual trigger.
type TriggerRunResponse struct {
	Inserted int                `json:"inserted"`
	Report   *RunReportResponse `json:"report"`
}

// TokenResponse carries an issued operator token.
type TokenResponse struct {
	Token   string      `json:"token"`
	Subject string      `json:"subject"`
	Role    domain.Role `json:"role"`
}

// ErrorResponse represents an error in API responses. Failed runs attach
// the partial report accumulated before the failure.
type ErrorResponse struct {
	Error   string             `json:"error"`
	Message string             `json:"message,omitempty"`
	Outcome string             `json:"outcome,omitempty"`
	Report  *RunReportResponse `json:"report,omitempty"`
}
