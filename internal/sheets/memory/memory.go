package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"household/internal/core"
	ports "household/internal/sheets"
)

var _ ports.ExpenseExporter = (*Exporter)(nil)

// Exporter keeps exported rows in memory. It stands in for Google Sheets
// when no spreadsheet is configured.
type Exporter struct {
	mu   sync.Mutex
	rows []core.Expense
	err  error
}

func New() *Exporter {
	return &Exporter{}
}

// FailWith makes subsequent appends return err; nil restores success.
func (x *Exporter) FailWith(err error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.err = err
}

// AppendExpense stores the expense and returns a synthetic row reference.
func (x *Exporter) AppendExpense(ctx context.Context, e core.Expense) (string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.err != nil {
		return "", x.err
	}
	x.rows = append(x.rows, e)
	ref := fmt.Sprintf("mem:%d", len(x.rows))
	slog.InfoContext(ctx, "Expense exported to memory",
		"id", e.ID,
		"ref", ref,
		"amount", e.Amount.String())
	return ref, nil
}

// Rows returns a copy of everything exported so far.
func (x *Exporter) Rows() []core.Expense {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]core.Expense(nil), x.rows...)
}
