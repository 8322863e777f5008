// Package core holds the household record types and the parsing rules applied
// to form input before anything reaches storage.
package core

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in cents. Expense totals are summed in cents to stay exact.
type Money struct {
	Cents int64
}

var ErrInvalidAmount = errors.New("invalid amount")

// MaxAmountCents bounds a single amount so that summing the expense table in
// SQLite's 64-bit integers cannot overflow.
const MaxAmountCents int64 = 1e13 - 1

// ParseAmount converts a decimal string to Money.
//
// Both dot (12.34) and comma (12,34) separators are accepted, a leading sign is
// allowed so refunds can be recorded as negative amounts, and the third decimal
// place is rounded half-up on the magnitude. Exponent notation is accepted
// too. Magnitudes above MaxAmountCents are rejected.
//
//	ParseAmount("12.50")  -> 1250
//	ParseAmount("-3,2")   -> -320
//	ParseAmount("1.005")  -> 101
//	ParseAmount("1.5e2")  -> 15000
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.ContainsAny(s, "eE") {
		return parseExponent(s)
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" && fracPart == "" {
		return Money{}, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return Money{}, ErrInvalidAmount
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil || iv > MaxAmountCents/100 {
		return Money{}, ErrInvalidAmount
	}

	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}

	cents := iv*100 + fracCents
	if cents > MaxAmountCents {
		return Money{}, ErrInvalidAmount
	}
	if neg {
		cents = -cents
	}
	return Money{Cents: cents}, nil
}

// parseExponent handles forms like "1e3" or "-2.5E-1", rounding to the
// nearest cent.
func parseExponent(s string) (Money, error) {
	for _, r := range s {
		if !strings.ContainsRune("0123456789.eE+-", r) {
			return Money{}, ErrInvalidAmount
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Money{}, ErrInvalidAmount
	}
	cents := math.Round(f * 100)
	if math.Abs(cents) > float64(MaxAmountCents) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: int64(cents)}, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) || r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// Float returns the amount in currency units, for charts and exports only.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

// String renders the amount with two decimals and a dot separator.
func (m Money) String() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	rem := cents % 100
	s := sign + strconv.FormatInt(cents/100, 10) + "."
	if rem < 10 {
		s += "0"
	}
	return s + strconv.FormatInt(rem, 10)
}
