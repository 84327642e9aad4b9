package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a fixed-point monetary value in rupees. All cart and gateway
// arithmetic goes through Amount so currency sums never touch binary floats.
type Amount struct {
	d decimal.Decimal
}

// Zero returns the zero amount.
func Zero() Amount { return Amount{} }

// FromRupees parses a decimal rupee string such as "499.50".
func FromRupees(s string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Amount{d: d}, nil
}

// MustFromRupees is FromRupees that panics on a bad literal.
func MustFromRupees(s string) Amount {
	a, err := FromRupees(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromPaise builds an amount from an integer minor-unit value.
func FromPaise(p int64) Amount {
	return Amount{d: decimal.New(p, -2)}
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount { return Amount{d: a.d.Add(b.d)} }

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount { return Amount{d: a.d.Sub(b.d)} }

// MulQty returns the amount multiplied by an integer quantity.
func (a Amount) MulQty(qty int) Amount {
	return Amount{d: a.d.Mul(decimal.NewFromInt(int64(qty)))}
}

// Paise returns the value in integer minor units (rupees * 100), the form
// the payment gateway expects.
func (a Amount) Paise() int64 { return a.d.Shift(2).IntPart() }

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool { return a.d.IsZero() }

// IsPositive reports whether the amount is strictly greater than zero.
func (a Amount) IsPositive() bool { return a.d.IsPositive() }

// GreaterThan reports a > b.
func (a Amount) GreaterThan(b Amount) bool { return a.d.GreaterThan(b.d) }

// Equal reports a == b by numeric value.
func (a Amount) Equal(b Amount) bool { return a.d.Equal(b.d) }

// Float64 is a lossy conversion for metrics and display only. Never feed it
// back into amount arithmetic.
func (a Amount) Float64() float64 { return a.d.InexactFloat64() }

func (a Amount) String() string { return a.d.String() }

// MarshalJSON encodes the amount as a decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.d.String() + `"`), nil
}

// UnmarshalJSON accepts either a JSON number or a decimal string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		a.d = decimal.Decimal{}
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid amount %s: %w", s, err)
	}
	a.d = d
	return nil
}
