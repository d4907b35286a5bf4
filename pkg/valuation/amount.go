package valuation

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Amount is a currency-agnostic monetary value in minor units (cents).
type Amount int64

// Zero is the empty amount.
const Zero Amount = 0

// FromFloat converts a major-unit decimal (49.9) into an Amount, rounding half away from zero.
func FromFloat(v float64) Amount {
	return Amount(math.Round(v * 100))
}

// ParseMinor parses a string holding minor units, e.g. "4900" as sent in provider notifications.
func ParseMinor(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, fmt.Errorf("%w: empty value", ErrInvalidAmount)
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Zero, fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}
	if v < 0 {
		return Zero, ErrNegativeAmount
	}
	return Amount(v), nil
}

// ParseDecimal parses a major-unit decimal string such as "49.00" or "120".
func ParseDecimal(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, fmt.Errorf("%w: empty value", ErrInvalidAmount)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if v < 0 {
		return Zero, ErrNegativeAmount
	}
	return FromFloat(v), nil
}

// Float returns the amount in major units.
func (a Amount) Float() float64 {
	return float64(a) / 100
}

// Minor returns the raw minor-unit count.
func (a Amount) Minor() int64 {
	return int64(a)
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a == 0
}

// String formats the amount with exactly two decimals.
func (a Amount) String() string {
	sign := ""
	v := int64(a)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON encodes the amount as a JSON number in major units, as analytics APIs expect.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts a JSON number or numeric string in major units.
func (a *Amount) UnmarshalJSON(b []byte) error {
	var raw json.Number
	if err := json.Unmarshal(b, &raw); err != nil {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidAmount, string(b))
		}
		raw = json.Number(s)
	}
	v, err := ParseDecimal(raw.String())
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// UnmarshalYAML lets catalog documents write payments as plain decimals (20, 149.5).
func (a *Amount) UnmarshalYAML(unmarshal func(any) error) error {
	var v float64
	if err := unmarshal(&v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}
	if v < 0 {
		return ErrNegativeAmount
	}
	*a = FromFloat(v)
	return nil
}
