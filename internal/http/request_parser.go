// Package http provides HTTP server and handler implementations.
//
// This file turns submitted forms and path values into the typed inputs the
// service layer validates.

package http

import (
	"net/http"
	"net/url"
	"strconv"

	"household/internal/core"
)

// ParseTaskInput reads the task creation form.
func ParseTaskInput(form url.Values) core.TaskInput {
	return core.TaskInput{
		Title:   formValue(form, "title"),
		Notes:   formValue(form, "notes"),
		DueDate: formValue(form, "due_date"),
	}
}

// ParseExpenseInput reads the expense creation form.
func ParseExpenseInput(form url.Values) core.ExpenseInput {
	return core.ExpenseInput{
		Description: formValue(form, "description"),
		Amount:      formValue(form, "amount"),
		Category:    formValue(form, "category"),
	}
}

// ParseShoppingItemInput reads the shopping item creation form.
func ParseShoppingItemInput(form url.Values) core.ShoppingItemInput {
	return core.ShoppingItemInput{
		Name: formValue(form, "name"),
		Qty:  formValue(form, "qty"),
	}
}

// ParseMemberInput reads the member creation form.
func ParseMemberInput(form url.Values) core.MemberInput {
	return core.MemberInput{
		Name: formValue(form, "name"),
		Role: formValue(form, "role"),
	}
}

func formValue(form url.Values, key string) string {
	return sanitizeInput(form.Get(key))
}

// ParseID reads the {id} path value. Anything but a positive integer is
// reported as absent so the handler can answer 404.
func ParseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ParseFormOrFail parses the request body. On failure it writes 400 and
// returns false.
func ParseFormOrFail(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return false
	}
	return true
}
