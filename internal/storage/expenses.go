package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"household/internal/core"
)

// Export states of an expense row.
const (
	ExportPending   = "pending"
	ExportExporting = "exporting"
	ExportExported  = "exported"
	ExportError     = "error"
)

var expenseTable = table[core.Expense]{
	kind:    core.KindExpense,
	columns: "id, description, amount_cents, category, created_at",
	scan:    scanExpense,
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e         core.Expense
		category  sql.NullString
		createdAt string
	)
	if err := row.Scan(&e.ID, &e.Description, &e.Amount.Cents, &category, &createdAt); err != nil {
		return core.Expense{}, err
	}
	e.Category = category.String
	created, err := parseTime(createdAt)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %d created_at: %w", e.ID, err)
	}
	e.CreatedAt = created
	return e, nil
}

func (s *Store) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	return s.Insert(ctx, core.KindExpense, Fields{
		{"description", e.Description},
		{"amount_cents", e.Amount.Cents},
		{"category", nullString(e.Category)},
	})
}

func (s *Store) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	return get(ctx, s, expenseTable, id)
}

func (s *Store) ListExpenses(ctx context.Context, q Query) ([]core.Expense, error) {
	return list(ctx, s, expenseTable, q, "")
}

// ExpenseTotal sums every expense amount.
func (s *Store) ExpenseTotal(ctx context.Context) (core.Money, error) {
	cents, err := s.Sum(ctx, core.KindExpense, "amount_cents")
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

// ExpenseTotalsByCategory groups amounts by category, largest first.
// Expenses without a category are grouped under an empty name.
func (s *Store) ExpenseTotalsByCategory(ctx context.Context) ([]core.CategoryTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(category, ''), SUM(amount_cents) AS total
		FROM expenses
		GROUP BY COALESCE(category, '')
		ORDER BY total DESC, 1 ASC`)
	if err != nil {
		return nil, unavailable("expense totals by category", err)
	}
	defer rows.Close()

	var out []core.CategoryTotal
	for rows.Next() {
		var ct core.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total.Cents); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		out = append(out, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("expense totals by category", err)
	}
	return out, nil
}

// PendingExpenseExports returns expenses not yet exported, oldest first.
func (s *Store) PendingExpenseExports(ctx context.Context, limit int) ([]core.Expense, error) {
	return list(ctx, s, expenseTable, Query{OrderBy: OrderID, Limit: limit}, "export_status = ?", ExportPending)
}

// ClaimExpenseExport moves a pending expense to exporting. It reports false
// when the row was not pending, i.e. another exporter already took it.
func (s *Store) ClaimExpenseExport(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE expenses SET export_status = ? WHERE id = ? AND export_status = ?",
		ExportExporting, id, ExportPending)
	if err != nil {
		return false, unavailable("claim expense export", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, unavailable("claim expense export", err)
	}
	return n == 1, nil
}

// ReleaseExportClaims returns expenses left in exporting by an interrupted
// worker to pending. Only call it while no export is running.
func (s *Store) ReleaseExportClaims(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE expenses SET export_status = ? WHERE export_status = ?",
		ExportPending, ExportExporting)
	if err != nil {
		return 0, unavailable("release export claims", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, unavailable("release export claims", err)
	}
	return n, nil
}

// MarkExpenseExported records the spreadsheet reference of a successful export.
func (s *Store) MarkExpenseExported(ctx context.Context, id int64, ref string) error {
	err := s.UpdateFields(ctx, core.KindExpense, id, Fields{
		{"export_status", ExportExported},
		{"export_ref", nullString(ref)},
		{"exported_at", formatTime(s.now())},
	})
	if err != nil {
		return fmt.Errorf("mark expense exported: %w", err)
	}
	slog.InfoContext(ctx, "Expense marked as exported", "id", id, "ref", ref)
	return nil
}

// MarkExpenseExportError takes the expense out of the pending sweep.
func (s *Store) MarkExpenseExportError(ctx context.Context, id int64) error {
	if err := s.UpdateFields(ctx, core.KindExpense, id, Fields{{"export_status", ExportError}}); err != nil {
		return fmt.Errorf("mark expense export error: %w", err)
	}
	slog.WarnContext(ctx, "Expense marked with export error", "id", id)
	return nil
}

// ExportStatus returns the export state of one expense.
func (s *Store) ExportStatus(ctx context.Context, id int64) (string, error) {
	var status string
	err := s.db.QueryRowContext(ctx, "SELECT export_status FROM expenses WHERE id = ?", id).Scan(&status)
	if err != nil {
		return "", notFoundOr(err, core.KindExpense, id, "export status")
	}
	return status, nil
}
