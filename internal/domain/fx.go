package domain

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ReferenceCurrency is the currency every amount is normalized to.
const ReferenceCurrency = "USD"

// NormalizedScale is the number of decimal places kept in normalized amounts.
const NormalizedScale = 2

// FxTable maps currency codes to a conversion rate into the reference currency.
// It is immutable once built; unknown codes convert at 1.0.
type FxTable struct {
	rates map[string]decimal.Decimal
}

// NewFxTable builds a table from the given rates. Codes are normalized and must
// be three letters; every rate must be positive.
func NewFxTable(rates map[string]decimal.Decimal) (FxTable, error) {
	table := FxTable{rates: make(map[string]decimal.Decimal, len(rates))}
	for code, rate := range rates {
		normalized := NormalizeCurrency(code)
		if err := ValidateCurrency(normalized); err != nil {
			return FxTable{}, err
		}
		if !rate.IsPositive() {
			return FxTable{}, fmt.Errorf("%w: %s=%s", ErrInvalidFxRate, code, rate)
		}
		table.rates[normalized] = rate
	}
	return table, nil
}

// DefaultFxTable returns the built-in static rates.
func DefaultFxTable() FxTable {
	return FxTable{rates: map[string]decimal.Decimal{
		"USD": decimal.NewFromInt(1),
		"EUR": decimal.RequireFromString("1.1"),
		"NOK": decimal.RequireFromString("0.095"),
		"THB": decimal.RequireFromString("0.028"),
	}}
}

type fxFile struct {
	Rates map[string]string `yaml:"rates"`
}

// LoadFxTable reads rates from a YAML file of the form:
//
//	rates:
//	  EUR: 1.1
//	  THB: 0.028
func LoadFxTable(path string) (FxTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return FxTable{}, fmt.Errorf("failed to read fx rates file: %w", err)
	}

	var file fxFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return FxTable{}, fmt.Errorf("failed to parse fx rates file: %w", err)
	}

	rates := make(map[string]decimal.Decimal, len(file.Rates))
	for code, value := range file.Rates {
		rate, err := decimal.NewFromString(value)
		if err != nil {
			return FxTable{}, fmt.Errorf("%w: %s=%q", ErrInvalidFxRate, code, value)
		}
		rates[code] = rate
	}

	return NewFxTable(rates)
}

// Rate returns the conversion rate for a currency code, or 1.0 when the code is unknown.
func (t FxTable) Rate(currency string) decimal.Decimal {
	if rate, ok := t.rates[NormalizeCurrency(currency)]; ok {
		return rate
	}
	return decimal.NewFromInt(1)
}

// Len returns the number of configured currencies.
func (t FxTable) Len() int {
	return len(t.rates)
}

// Enrich converts a validated row into a transaction with its normalized amount and high-value flag.
func (t FxTable) Enrich(row ValidatedRow) Transaction {
	normalized := row.Amount.Mul(t.Rate(row.Currency)).Round(NormalizedScale)

	return Transaction{
		Timestamp:        row.Timestamp,
		Customer:         row.Customer,
		Item:             row.Item,
		Amount:           row.Amount,
		Currency:         row.Currency,
		AmountNormalized: normalized,
		IsHighValue:      normalized.GreaterThanOrEqual(HighValueThreshold),
	}
}
