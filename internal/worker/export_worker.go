package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"household/internal/amqp"
	"household/internal/core"
	"household/internal/sheets"
	"household/internal/storage"
)

// ExportWorker copies newly created expenses from SQLite to the external ledger.
type ExportWorker struct {
	store     *storage.Store
	exporter  sheets.ExpenseExporter
	batchSize int
}

func NewExportWorker(store *storage.Store, exporter sheets.ExpenseExporter, batchSize int) *ExportWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &ExportWorker{
		store:     store,
		exporter:  exporter,
		batchSize: batchSize,
	}
}

// HandleEvent processes one record event from AMQP. Only expense creations
// are exported; every other event is acknowledged and ignored.
func (w *ExportWorker) HandleEvent(ctx context.Context, e *amqp.RecordEvent) error {
	if e.Kind != core.KindExpense || e.Action != amqp.ActionCreated {
		slog.DebugContext(ctx, "Ignoring record event",
			"kind", e.Kind,
			"id", e.ID,
			"action", e.Action)
		return nil
	}

	status, err := w.store.ExportStatus(ctx, e.ID)
	if errors.Is(err, core.ErrNotFound) {
		slog.WarnContext(ctx, "Expense vanished before export", "id", e.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read export status: %w", err)
	}
	if status != storage.ExportPending {
		// Redelivered after the sweep already handled it.
		return nil
	}

	expense, err := w.store.GetExpense(ctx, e.ID)
	if err != nil {
		return fmt.Errorf("get expense from storage: %w", err)
	}
	_, err = w.export(ctx, expense)
	return err
}

// ProcessPending exports one batch of expenses still marked pending.
// It covers events lost while the worker or the broker was down.
func (w *ExportWorker) ProcessPending(ctx context.Context) (int, error) {
	pending, err := w.store.PendingExpenseExports(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("get pending expenses: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	slog.InfoContext(ctx, "Processing pending expenses", "count", len(pending))

	exported := 0
	for _, e := range pending {
		if ctx.Err() != nil {
			return exported, ctx.Err()
		}
		appended, err := w.export(ctx, e)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to export expense", "id", e.ID, "error", err)
			continue
		}
		if appended {
			exported++
		}
	}
	return exported, nil
}

// StartupCheck drains a larger backlog once before consuming events.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	released, err := w.store.ReleaseExportClaims(ctx)
	if err != nil {
		return fmt.Errorf("startup export check: %w", err)
	}
	if released > 0 {
		slog.WarnContext(ctx, "Released interrupted export claims", "count", released)
	}

	original := w.batchSize
	w.batchSize = original * 5
	defer func() { w.batchSize = original }()

	exported, err := w.ProcessPending(ctx)
	if err != nil {
		return fmt.Errorf("startup export check: %w", err)
	}
	if exported == 0 {
		slog.InfoContext(ctx, "No pending expenses found on startup")
		return nil
	}
	slog.InfoContext(ctx, "Startup export completed", "exported", exported)
	return nil
}

// export claims the expense and appends it, reporting whether a row was
// written. An expense claimed by a concurrent export (event handler or sweep)
// is skipped without error.
func (w *ExportWorker) export(ctx context.Context, e core.Expense) (bool, error) {
	claimed, err := w.store.ClaimExpenseExport(ctx, e.ID)
	if err != nil {
		return false, fmt.Errorf("claim expense: %w", err)
	}
	if !claimed {
		slog.DebugContext(ctx, "Expense already claimed by another export", "id", e.ID)
		return false, nil
	}

	ref, err := w.exporter.AppendExpense(ctx, e)
	if err != nil {
		if markErr := w.store.MarkExpenseExportError(ctx, e.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "id", e.ID, "error", markErr)
		}
		return false, fmt.Errorf("append expense: %w", err)
	}

	if err := w.store.MarkExpenseExported(ctx, e.ID, ref); err != nil {
		// The row is written and the claim keeps the sweep off it, so only log.
		slog.ErrorContext(ctx, "Failed to mark expense as exported", "id", e.ID, "error", err)
	}

	slog.InfoContext(ctx, "Exported expense",
		"id", e.ID,
		"ref", ref,
		"amount", e.Amount.String())
	return true, nil
}
