// Package money holds the single-currency (INR) amount type used for package
// prices, quote adjustments and final prices.
package money

import (
	"bytes"
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Amount is a decimal currency value. The zero value is 0.
type Amount struct {
	d decimal.Decimal
}

// Zero is the zero amount.
var Zero = Amount{}

// NewAmount builds an amount of whole rupees.
func NewAmount(v int64) Amount {
	return Amount{d: decimal.NewFromInt(v)}
}

// AmountFromFloat converts a float, used at JSON and form boundaries.
func AmountFromFloat(v float64) Amount {
	return Amount{d: decimal.NewFromFloat(v)}
}

// AmountFromDecimal wraps an existing decimal.
func AmountFromDecimal(d decimal.Decimal) Amount {
	return Amount{d: d}
}

// ParseAmount parses a decimal string such as "1800" or "-12.5".
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Zero, fmt.Errorf("money: parse %q: %w", s, err)
	}
	return Amount{d: d}, nil
}

func (a Amount) Decimal() decimal.Decimal { return a.d }

func (a Amount) Add(b Amount) Amount { return Amount{d: a.d.Add(b.d)} }
func (a Amount) Sub(b Amount) Amount { return Amount{d: a.d.Sub(b.d)} }
func (a Amount) Mul(b Amount) Amount { return Amount{d: a.d.Mul(b.d)} }
func (a Amount) Neg() Amount         { return Amount{d: a.d.Neg()} }

// MulInt multiplies by an integer quantity such as a traveller count.
func (a Amount) MulInt(n int) Amount {
	return Amount{d: a.d.Mul(decimal.NewFromInt(int64(n)))}
}

// Percent returns pct percent of a. pct is signed.
func (a Amount) Percent(pct Amount) Amount {
	return Amount{d: a.d.Mul(pct.d).Div(hundred)}
}

// Max0 clamps negative amounts to zero.
func (a Amount) Max0() Amount {
	if a.d.IsNegative() {
		return Zero
	}
	return a
}

// Round rounds half away from zero to places decimal places.
func (a Amount) Round(places int32) Amount { return Amount{d: a.d.Round(places)} }

func (a Amount) IsZero() bool        { return a.d.IsZero() }
func (a Amount) IsNegative() bool    { return a.d.IsNegative() }
func (a Amount) IsPositive() bool    { return a.d.IsPositive() }
func (a Amount) Cmp(b Amount) int    { return a.d.Cmp(b.d) }
func (a Amount) Equal(b Amount) bool { return a.d.Equal(b.d) }
func (a Amount) String() string      { return a.d.String() }

// Float64 returns the nearest float, for metrics and display only.
func (a Amount) Float64() float64 {
	f, _ := a.d.Float64()
	return f
}

// MarshalJSON encodes the amount as a bare JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.d.String()), nil
}

// UnmarshalJSON accepts JSON numbers, numeric strings and null.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = Zero
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("money: decode amount: %w", err)
	}
	a.d = d
	return nil
}

// Value implements driver.Valuer so amounts map onto NUMERIC columns.
func (a Amount) Value() (driver.Value, error) {
	return a.d.String(), nil
}

// Scan implements sql.Scanner.
func (a *Amount) Scan(src any) error {
	var d decimal.NullDecimal
	if err := d.Scan(src); err != nil {
		return fmt.Errorf("money: scan amount: %w", err)
	}
	if !d.Valid {
		*a = Zero
		return nil
	}
	a.d = d.Decimal
	return nil
}

// Sum adds amounts.
func Sum(amounts ...Amount) Amount {
	total := Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
