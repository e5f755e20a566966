package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// HighValueThreshold is the normalized amount at or above which a transaction is flagged.
var HighValueThreshold = decimal.NewFromInt(100)

// Transaction is one ingested source row after enrichment.
type Transaction struct {
	Timestamp        time.Time
	CreatedAt        time.Time
	ID               string
	Customer         string
	Item             string
	Currency         string
	Amount           decimal.Decimal
	AmountNormalized decimal.Decimal
	IsHighValue      bool
}

// SourceRow identifies the physical line a transaction was read from.
type SourceRow struct {
	ID   string
	File string
	Line int
	Hash string
}

// IngestionRecord maps an already ingested source row to the transaction it produced.
type IngestionRecord struct {
	IngestedAt    time.Time
	SourceRowID   string
	SourceFile    string
	LineHash      string
	TransactionID string
	LineNumber    int
}

// AppendResult reports whether an append created a new transaction.
type AppendResult int

const (
	AppendInserted AppendResult = iota + 1
	AppendAlreadyPresent
)

func (r AppendResult) String() string {
	switch r {
	case AppendInserted:
		return "inserted"
	case AppendAlreadyPresent:
		return "already_present"
	default:
		return "unknown"
	}
}

// DailySummary aggregates the transactions of one calendar date (UTC).
type DailySummary struct {
	Date  time.Time
	Count int64
	Total decimal.Decimal
}
