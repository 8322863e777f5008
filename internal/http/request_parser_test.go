package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"household/internal/core"
)

func TestParseTaskInput(t *testing.T) {
	form := url.Values{
		"title":    {"  Fix tap \x00"},
		"notes":    {"kitchen\nsink"},
		"due_date": {"2024-06-01T09:30"},
		"ignored":  {"x"},
	}
	got := ParseTaskInput(form)
	want := core.TaskInput{Title: "Fix tap", Notes: "kitchen\nsink", DueDate: "2024-06-01T09:30"}
	if got != want {
		t.Errorf("ParseTaskInput() = %+v, want %+v", got, want)
	}
}

func TestParseInputs_AbsentFieldsAreEmpty(t *testing.T) {
	empty := url.Values{}
	if got := ParseExpenseInput(empty); got != (core.ExpenseInput{}) {
		t.Errorf("ParseExpenseInput() = %+v", got)
	}
	if got := ParseShoppingItemInput(empty); got != (core.ShoppingItemInput{}) {
		t.Errorf("ParseShoppingItemInput() = %+v", got)
	}
	if got := ParseMemberInput(empty); got != (core.MemberInput{}) {
		t.Errorf("ParseMemberInput() = %+v", got)
	}
}

func TestParseExpenseInput(t *testing.T) {
	got := ParseExpenseInput(url.Values{"description": {"Rent"}, "amount": {" 950,00 "}, "category": {"home"}})
	want := core.ExpenseInput{Description: "Rent", Amount: "950,00", Category: "home"}
	if got != want {
		t.Errorf("ParseExpenseInput() = %+v, want %+v", got, want)
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		value  string
		want   int64
		wantOK bool
	}{
		{"1", 1, true},
		{"42", 42, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"1.5", 0, false},
		{"", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/tasks/x/toggle", nil)
			req.SetPathValue("id", tt.value)
			got, ok := ParseID(req)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseID(%q) = (%d, %v), want (%d, %v)", tt.value, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseFormOrFail(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader("title=value"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()

	if !ParseFormOrFail(rr, req) {
		t.Fatalf("ParseFormOrFail() = false, status %d", rr.Code)
	}
	if req.PostForm.Get("title") != "value" {
		t.Error("form was not parsed")
	}
}

func TestParseFormOrFail_Malformed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader("title=%zz"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()

	if ParseFormOrFail(rr, req) {
		t.Fatal("ParseFormOrFail() = true for malformed body")
	}
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  hello  ", "hello"},
		{"a\x00b\x07c", "abc"},
		{"line1\nline2\ttab", "line1\nline2\ttab"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatEuros(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "€0,00"},
		{1250, "€12,50"},
		{5, "€0,05"},
		{-320, "-€3,20"},
	}
	for _, tt := range tests {
		if got := formatEuros(core.Money{Cents: tt.cents}); got != tt.want {
			t.Errorf("formatEuros(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}
