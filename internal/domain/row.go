package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FieldDelimiter separates the fields of a source line. Quoting is not supported.
const FieldDelimiter = ","

// RowFieldCount is the number of fields a data line must carry:
// timestamp, customer, item, amount, currency.
const RowFieldCount = 5

// RejectReason classifies why a source line was not ingested.
type RejectReason string

const (
	RejectTooFewFields RejectReason = "too_few_fields"
	RejectBadTimestamp RejectReason = "bad_timestamp"
	RejectBadAmount    RejectReason = "bad_amount"
)

// RowRejection is returned by ParseRow for lines that fail validation.
type RowRejection struct {
	Reason RejectReason
	Detail string
}

func (e *RowRejection) Error() string {
	if e.Detail == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

// ValidatedRow is a parsed data line, ready for enrichment.
type ValidatedRow struct {
	Timestamp time.Time
	Customer  string
	Item      string
	Currency  string
	Amount    decimal.Decimal
}

// Layouts accepted for the timestamp field. Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// MaxAmountDigits bounds the significant digits of a parsed amount.
const MaxAmountDigits = 28

// A sign may lead or trail the number, but not both.
var amountRegex = regexp.MustCompile(`^([+-]?)(\d+(?:\.\d*)?|\.\d+)([+-]?)$`)

// IsBlankLine reports whether a line carries no data at all.
func IsBlankLine(line string) bool {
	return strings.TrimSpace(line) == ""
}

// ParseRow validates one data line. Customer and item are trimmed but may be empty;
// the currency is trimmed and upper-cased without further checks.
func ParseRow(line string) (ValidatedRow, error) {
	parts := strings.Split(line, FieldDelimiter)
	if len(parts) < RowFieldCount {
		return ValidatedRow{}, &RowRejection{
			Reason: RejectTooFewFields,
			Detail: fmt.Sprintf("got %d fields, want %d", len(parts), RowFieldCount),
		}
	}

	ts, err := ParseTimestamp(parts[0])
	if err != nil {
		return ValidatedRow{}, &RowRejection{Reason: RejectBadTimestamp, Detail: err.Error()}
	}

	amount, err := ParseAmount(parts[3])
	if err != nil {
		return ValidatedRow{}, &RowRejection{Reason: RejectBadAmount, Detail: err.Error()}
	}

	return ValidatedRow{
		Timestamp: ts,
		Customer:  strings.TrimSpace(parts[1]),
		Item:      strings.TrimSpace(parts[2]),
		Amount:    amount,
		Currency:  NormalizeCurrency(parts[4]),
	}, nil
}

// ParseTimestamp parses an ISO-8601 instant and returns it in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// ParseAmount parses a plain decimal number: optional leading or trailing sign,
// digits, optional fraction. Exponents, grouping separators, NaN and amounts
// longer than MaxAmountDigits significant digits are rejected.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	m := amountRegex.FindStringSubmatch(s)
	if m == nil || (m[1] != "" && m[3] != "") {
		return decimal.Zero, fmt.Errorf("unrecognized amount %q", s)
	}

	number := m[2]
	if digits := significantDigits(number); digits > MaxAmountDigits {
		return decimal.Zero, fmt.Errorf("amount %q has %d significant digits, max %d", s, digits, MaxAmountDigits)
	}

	if strings.HasSuffix(number, ".") {
		number += "0"
	}
	if strings.HasPrefix(number, ".") {
		number = "0" + number
	}
	if m[1] == "-" || m[3] == "-" {
		number = "-" + number
	}

	return decimal.NewFromString(number)
}

func significantDigits(number string) int {
	digits := strings.TrimLeft(strings.Replace(number, ".", "", 1), "0")
	return len(digits)
}

// NormalizeCurrency trims and upper-cases a currency code.
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
