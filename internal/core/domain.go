package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// Kind identifies one of the household record tables.
type Kind string

const (
	KindTask         Kind = "task"
	KindExpense      Kind = "expense"
	KindShoppingItem Kind = "shopping_item"
	KindMember       Kind = "member"
)

type (
	Task struct {
		ID        int64
		Title     string
		Notes     string
		Done      bool
		DueDate   *time.Time
		CreatedAt time.Time
	}

	Expense struct {
		ID          int64
		Description string
		Amount      Money
		Category    string
		CreatedAt   time.Time
	}

	ShoppingItem struct {
		ID     int64
		Name   string
		Qty    string
		Bought bool
	}

	Member struct {
		ID   int64
		Name string
		Role string
	}
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError reports a rejected form field. Message is shown to the user as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Overdue reports whether an open task is past its due date.
func (t Task) Overdue(now time.Time) bool {
	return !t.Done && t.DueDate != nil && t.DueDate.Before(now)
}

func (k Kind) String() string {
	return string(k)
}

// IsValid returns true for the four known record kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindTask, KindExpense, KindShoppingItem, KindMember:
		return true
	default:
		return false
	}
}

const maxTextLen = 200

func requireText(field, value, msg string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", invalid(field, msg)
	}
	if utf8.RuneCountInString(v) > maxTextLen {
		return "", invalid(field, field+" too long (max 200 characters)")
	}
	return v, nil
}
