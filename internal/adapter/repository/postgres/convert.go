package postgres

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/txingest/internal/domain"
	"github.com/iho/txingest/internal/infrastructure/postgres/generated"
)

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.NaN || n.Int == nil {
		return decimal.Zero
	}

	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func rowToTransaction(row generated.Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:               row.ID,
		Timestamp:        row.OccurredAt.Time.UTC(),
		Customer:         row.Customer,
		Item:             row.Item,
		Amount:           numericToDecimal(row.Amount),
		Currency:         row.Currency,
		AmountNormalized: numericToDecimal(row.AmountNormalized),
		IsHighValue:      row.IsHighValue,
		CreatedAt:        row.CreatedAt.Time.UTC(),
	}
}

func rowToDailySummary(row generated.GetDailySummaryRow) *domain.DailySummary {
	return &domain.DailySummary{
		Date:  time.Date(row.Day.Time.Year(), row.Day.Time.Month(), row.Day.Time.Day(), 0, 0, 0, 0, time.UTC),
		Count: row.Count,
		Total: numericToDecimal(row.Total).Round(domain.NormalizedScale),
	}
}
