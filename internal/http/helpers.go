package http

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"household/internal/core"
)

// formatEuros formats an amount as a Euro currency string (e.g., "€12,34").
func formatEuros(m core.Money) string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	euros := cents / 100
	rem := cents % 100
	s := strconv.FormatInt(euros, 10) + "," + fmt.Sprintf("%02d", rem)
	if neg {
		return "-€" + s
	}
	return "€" + s
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(result)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("02 Jan 2006")
}

// formatDue renders an optional due date, keeping the time when one was given.
// Due dates are entered without a zone and stored as UTC, so they are shown
// as UTC too.
func formatDue(t *time.Time) string {
	if t == nil {
		return ""
	}
	u := t.UTC()
	if u.Hour() == 0 && u.Minute() == 0 {
		return u.Format("02 Jan 2006")
	}
	return u.Format("02 Jan 2006 15:04")
}
