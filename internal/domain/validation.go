package domain

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidCurrency is returned for codes that are not three ASCII letters.
var ErrInvalidCurrency = errors.New("invalid currency code")

var currencyCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// ValidateCurrency checks the shape of a normalized currency code. It does
// not require the code to be known; unknown codes convert at 1.0.
func ValidateCurrency(code string) error {
	if !currencyCodePattern.MatchString(code) {
		return fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	return nil
}
