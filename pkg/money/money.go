// Package money provides a fixed-point monetary value object.
// Amounts are stored as int64 in the smallest currency unit (cents),
// so arithmetic never touches floating point.
package money

import (
	"errors"
	"fmt"
	"math"
	"regexp"
)

// DefaultCurrency is used when callers do not specify a currency code.
const DefaultCurrency Code = "USD"

// decimals is fixed at 2 for all supported currencies.
const decimals = 2

var (
	// ErrInvalidCurrencyCode is returned when a currency code is not three uppercase letters.
	ErrInvalidCurrencyCode = errors.New("invalid currency code")

	// ErrAmountOverflow is returned when an amount cannot be represented in int64 cents.
	ErrAmountOverflow = errors.New("amount exceeds maximum safe value")

	// ErrCurrencyMismatch is returned when arithmetic mixes two currencies.
	ErrCurrencyMismatch = errors.New("currency mismatch")
)

var codeFormat = regexp.MustCompile(`^[A-Z]{3}$`)

// Code is an ISO 4217 currency code.
type Code string

// IsValid reports whether the code is three uppercase letters.
func (c Code) IsValid() bool {
	return codeFormat.MatchString(string(c))
}

// String returns the code as a plain string.
func (c Code) String() string { return string(c) }

// Money represents a monetary value in a specific currency.
// Invariants:
//   - Amount is always stored in the smallest currency unit.
//   - Currency code must be valid ISO 4217 (3 uppercase letters).
//   - Arithmetic requires matching currencies.
type Money struct {
	amount   int64
	currency Code
}

// New creates Money from a main-unit amount (e.g. dollars).
// The amount may not carry more precision than the currency allows.
func New(amount float64, currency Code) (Money, error) {
	if currency == "" {
		currency = DefaultCurrency
	}
	if !currency.IsValid() {
		return Money{}, ErrInvalidCurrencyCode
	}
	cents := amount * math.Pow10(decimals)
	rounded := math.Round(cents)
	if math.Abs(cents-rounded) > 1e-6 {
		return Money{}, fmt.Errorf("amount %v has more than %d decimal places", amount, decimals)
	}
	if rounded > math.MaxInt64 || rounded < math.MinInt64 {
		return Money{}, ErrAmountOverflow
	}
	return Money{amount: int64(rounded), currency: currency}, nil
}

// NewFromSmallestUnit creates Money directly from cents.
// Used for hydrating values from storage.
func NewFromSmallestUnit(amount int64, currency Code) (Money, error) {
	if currency == "" {
		currency = DefaultCurrency
	}
	if !currency.IsValid() {
		return Money{}, ErrInvalidCurrencyCode
	}
	return Money{amount: amount, currency: currency}, nil
}

// NewFromData creates Money from raw storage data without validation.
// Only repositories should use this.
func NewFromData(amount int64, currency string) Money {
	return Money{amount: amount, currency: Code(currency)}
}

// Amount returns the value in the smallest currency unit.
func (m Money) Amount() int64 { return m.amount }

// AmountFloat returns the value in main currency units.
func (m Money) AmountFloat() float64 {
	return float64(m.amount) / math.Pow10(decimals)
}

// Currency returns the currency code.
func (m Money) Currency() Code { return m.currency }

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool { return m.amount > 0 }

// IsNegative reports whether the amount is strictly less than zero.
func (m Money) IsNegative() bool { return m.amount < 0 }

// Add returns the sum of two Money values of the same currency.
func (m Money) Add(other Money) (Money, error) {
	if !m.IsSameCurrency(other) {
		return Money{}, ErrCurrencyMismatch
	}
	if (other.amount > 0 && m.amount > math.MaxInt64-other.amount) ||
		(other.amount < 0 && m.amount < math.MinInt64-other.amount) {
		return Money{}, ErrAmountOverflow
	}
	return Money{amount: m.amount + other.amount, currency: m.currency}, nil
}

// Subtract returns the difference of two Money values of the same currency.
func (m Money) Subtract(other Money) (Money, error) {
	return m.Add(other.Negate())
}

// Negate returns the value with its sign flipped.
func (m Money) Negate() Money {
	return Money{amount: -m.amount, currency: m.currency}
}

// Equals reports whether both values have the same currency and amount.
func (m Money) Equals(other Money) bool {
	return m.IsSameCurrency(other) && m.amount == other.amount
}

// GreaterThan reports whether m is strictly greater than other.
func (m Money) GreaterThan(other Money) (bool, error) {
	if !m.IsSameCurrency(other) {
		return false, ErrCurrencyMismatch
	}
	return m.amount > other.amount, nil
}

// IsSameCurrency reports whether both values share a currency.
func (m Money) IsSameCurrency(other Money) bool {
	return m.currency == other.currency
}

// String renders the value for logs and messages, e.g. "150.00 USD".
func (m Money) String() string {
	return fmt.Sprintf("%.2f %s", m.AmountFloat(), m.currency)
}
