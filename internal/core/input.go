package core

import (
	"strings"
	"time"
)

// Form inputs as submitted by the creation forms. Optional fields are empty
// strings when absent; conversion trims them and leaves them empty.
type (
	TaskInput struct {
		Title   string
		Notes   string
		DueDate string
	}

	ExpenseInput struct {
		Description string
		Amount      string
		Category    string
	}

	ShoppingItemInput struct {
		Name string
		Qty  string
	}

	MemberInput struct {
		Name string
		Role string
	}
)

var dueDateLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// ToTask validates the input and builds the task to insert.
func (in TaskInput) ToTask() (Task, error) {
	title, err := requireText("title", in.Title, "Task title required")
	if err != nil {
		return Task{}, err
	}
	t := Task{Title: title, Notes: strings.TrimSpace(in.Notes)}
	if due := strings.TrimSpace(in.DueDate); due != "" {
		d, err := ParseDueDate(due)
		if err != nil {
			return Task{}, err
		}
		t.DueDate = &d
	}
	return t, nil
}

// ParseDueDate accepts the values produced by date and datetime-local inputs.
func ParseDueDate(s string) (time.Time, error) {
	for _, layout := range dueDateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d.UTC(), nil
		}
	}
	return time.Time{}, invalid("due_date", "Invalid due date")
}

// ToExpense validates the input and builds the expense to insert.
func (in ExpenseInput) ToExpense() (Expense, error) {
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return Expense{}, invalid("amount", "Invalid amount")
	}
	desc, err := requireText("description", in.Description, "Expense description required")
	if err != nil {
		return Expense{}, err
	}
	return Expense{
		Description: desc,
		Amount:      amount,
		Category:    strings.TrimSpace(in.Category),
	}, nil
}

func (in ShoppingItemInput) ToShoppingItem() (ShoppingItem, error) {
	name, err := requireText("name", in.Name, "Provide an item name")
	if err != nil {
		return ShoppingItem{}, err
	}
	return ShoppingItem{Name: name, Qty: strings.TrimSpace(in.Qty)}, nil
}

func (in MemberInput) ToMember() (Member, error) {
	name, err := requireText("name", in.Name, "Member name required")
	if err != nil {
		return Member{}, err
	}
	return Member{Name: name, Role: strings.TrimSpace(in.Role)}, nil
}
