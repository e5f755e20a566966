package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/txingest/internal/domain"
)

func TestDailySummariesFromDomain(t *testing.T) {
	days := []*domain.DailySummary{
		{Date: time.Date(2025, 11, 25, 0, 0, 0, 0, time.UTC), Count: 2, Total: decimal.RequireFromString("130.5")},
		{Date: time.Date(2025, 11, 24, 0, 0, 0, 0, time.UTC), Count: 1, Total: decimal.NewFromInt(5)},
	}

	got := DailySummariesFromDomain(days)
	if len(got) != 2 {
		t.Fatalf("expected 2 days, got %d", len(got))
	}
	if got[0].Date != "2025-11-25" || got[0].Total != "130.50" || got[0].Count != 2 {
		t.Fatalf("unexpected first day: %+v", got[0])
	}
	if got[1].Total != "5.00" {
		t.Fatalf("expected two decimals, got %s", got[1].Total)
	}
}

func TestRunReportFromDomain(t *testing.T) {
	if RunReportFromDomain(nil) != nil {
		t.Fatal("expected nil for nil report")
	}

	report := domain.NewRunReport(time.Date(2025, 11, 24, 12, 0, 0, 0, time.UTC))
	report.Skip(domain.RejectBadTimestamp)
	report.Inserted = 4
	report.Duration = 2 * time.Second

	got := RunReportFromDomain(report)
	if got.DurationMS != 2000 || got.Inserted != 4 || got.SkipReasons["bad_timestamp"] != 1 {
		t.Fatalf("unexpected response: %+v", got)
	}
}

func TestTransactionResponseJSON(t *testing.T) {
	resp := TransactionFromDomain(&domain.Transaction{
		ID:               "t1",
		Customer:         "Eve",
		Amount:           decimal.RequireFromString("2000"),
		Currency:         "EUR",
		AmountNormalized: decimal.RequireFromString("2200.00"),
		IsHighValue:      true,
	})

	body, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["amount_normalized"] != "2200" || decoded["is_high_value"] != true {
		t.Fatalf("unexpected json: %s", body)
	}
}
