// Package money provides currency-safe display formatting and arithmetic for
// bill amounts. Amounts flow through the system as shopspring decimals; this
// package converts them to integer cents for go-money when a total has to be
// summed or rendered for the UI.
package money

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// USD is the default currency for bills without an explicit one.
const USD = "USD"

// Money is a monetary value with a currency.
type Money struct {
	m *money.Money
}

// New creates a Money value from minor units (cents) and a currency code.
func New(amountCents int64, currencyCode string) *Money {
	return &Money{m: money.New(amountCents, currencyCode)}
}

// NewFromDecimal converts a decimal amount to Money, rounding to the
// currency's minor unit.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currency = money.GetCurrency(USD)
	}

	multiplier := decimal.New(1, int32(currency.Fraction))
	cents := amount.Mul(multiplier).Round(0).IntPart()

	return New(cents, currency.Code)
}

// NewFromString parses amounts like "100.50", "$1,234.56".
func NewFromString(amount string, currencyCode string) (*Money, error) {
	amount = strings.TrimSpace(amount)
	amount = strings.ReplaceAll(amount, " ", "")
	for _, sym := range []string{"$", "€", "£"} {
		amount = strings.ReplaceAll(amount, sym, "")
	}
	amount = strings.ReplaceAll(amount, ",", "")

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	return NewFromDecimal(d, currencyCode), nil
}

// Amount returns the amount in minor units (cents).
func (m *Money) Amount() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// Currency returns the ISO-4217 currency code.
func (m *Money) Currency() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Currency().Code
}

// Decimal returns the amount in major units as a decimal.
func (m *Money) Decimal() decimal.Decimal {
	if m == nil || m.m == nil {
		return decimal.Zero
	}
	return decimal.New(m.m.Amount(), -int32(m.m.Currency().Fraction))
}

// Add sums two Money values. Returns an error if currencies differ.
func (m *Money) Add(other *Money) (*Money, error) {
	if m == nil || m.m == nil {
		return other, nil
	}
	if other == nil || other.m == nil {
		return m, nil
	}
	result, err := m.m.Add(other.m)
	if err != nil {
		return nil, err
	}
	return &Money{m: result}, nil
}

// Display renders the amount with its currency symbol, e.g. "$1,234.56".
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return money.New(0, USD).Display()
	}
	return m.m.Display()
}

// Display formats a decimal amount for the UI in one call.
func Display(amount decimal.Decimal, currencyCode string) string {
	return NewFromDecimal(amount, currencyCode).Display()
}
