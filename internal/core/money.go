// Package core holds the household ledger model and the rules applied to it.
//
// This file contains the Money type. Amounts are kept as exact decimals with
// two fractional digits; no binary floating point is involved anywhere.
package core

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of fractional digits kept for every amount.
const MoneyPlaces = 2

// maxParseDigits bounds the integer digits ParseMoney accepts.
const maxParseDigits = 30

// MaxMoney is the largest amount a transaction may carry: 16 integer digits
// and 2 decimals, the decimal(18,2) range of the ledger.
var MaxMoney = MoneyFromCents(999_999_999_999_999_999)

// Money is an exact currency amount rounded to two decimal places.
// The zero value is 0.00.
type Money struct {
	amount decimal.Decimal
}

// NewMoney rounds d half away from zero to two decimal places.
func NewMoney(d decimal.Decimal) Money {
	return Money{amount: d.Round(MoneyPlaces)}
}

// MoneyFromCents builds an amount from an integer number of cents.
func MoneyFromCents(cents int64) Money {
	return Money{amount: decimal.New(cents, -MoneyPlaces)}
}

// ParseMoney parses a decimal string. Both dot (12.34) and comma (12,34)
// separators are accepted; extra fractional digits are rounded.
//
// Examples:
//
//	ParseMoney("12.34")  -> 12.34
//	ParseMoney("12,345") -> 12.35
//	ParseMoney("-3")     -> -3.00 (sign checks belong to validation)
func ParseMoney(s string) (Money, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	magnitude := int(d.NumDigits()) + int(d.Exponent())
	switch {
	case magnitude > maxParseDigits:
		return Money{}, ErrInvalidAmount
	case magnitude < -MoneyPlaces:
		// under 0.001 in absolute value, rounds to zero
		return Money{}, nil
	}
	return NewMoney(d), nil
}

// Cents returns the amount as an integer number of cents. Amounts outside the
// int64 range fail with ErrAmountOutOfRange.
func (m Money) Cents() (int64, error) {
	cents := m.amount.Shift(MoneyPlaces)
	if cents.GreaterThan(decimal.NewFromInt(math.MaxInt64)) || cents.LessThan(decimal.NewFromInt(math.MinInt64)) {
		return 0, fmt.Errorf("%s: %w", m, ErrAmountOutOfRange)
	}
	return cents.IntPart(), nil
}

// GreaterThan reports whether m > o.
func (m Money) GreaterThan(o Money) bool {
	return m.amount.GreaterThan(o.amount)
}

func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

func (m Money) Add(o Money) Money {
	return Money{amount: m.amount.Add(o.amount)}
}

func (m Money) Sub(o Money) Money {
	return Money{amount: m.amount.Sub(o.amount)}
}

func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

func (m Money) Equal(o Money) bool {
	return m.amount.Equal(o.amount)
}

// String formats the amount with exactly two decimals ("50.00").
func (m Money) String() string {
	return m.amount.StringFixed(MoneyPlaces)
}

// MarshalJSON writes the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = Money{}
		return nil
	}
	parsed, err := ParseMoney(string(bytes.Trim(data, `"`)))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
