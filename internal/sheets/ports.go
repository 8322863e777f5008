package sheets

import (
	"context"

	"household/internal/core"
)

// ExpenseExporter appends one expense to an external ledger and returns a
// reference to the written row.
type ExpenseExporter interface {
	AppendExpense(ctx context.Context, e core.Expense) (rowRef string, err error)
}
