package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"household/internal/amqp"
	"household/internal/core"
	"household/internal/storage"
)

// EventPublisher announces committed record changes.
type EventPublisher interface {
	PublishRecordEvent(ctx context.Context, kind core.Kind, id int64, action string) error
}

// Household orchestrates record operations across SQLite and AMQP.
type Household struct {
	store     *storage.Store
	publisher EventPublisher
}

// NewHousehold wires the store and an optional publisher; nil disables events.
func NewHousehold(store *storage.Store, publisher EventPublisher) *Household {
	return &Household{store: store, publisher: publisher}
}

// Store exposes the underlying store for health checks.
func (h *Household) Store() *storage.Store {
	return h.store
}

func (h *Household) CreateTask(ctx context.Context, in core.TaskInput) (int64, error) {
	t, err := in.ToTask()
	if err != nil {
		return 0, err
	}
	id, err := h.store.CreateTask(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("save task: %w", err)
	}
	h.publish(ctx, core.KindTask, id, amqp.ActionCreated)
	return id, nil
}

func (h *Household) ToggleTask(ctx context.Context, id int64) (bool, error) {
	done, err := h.store.ToggleTask(ctx, id)
	if err != nil {
		return false, fmt.Errorf("toggle task: %w", err)
	}
	h.publish(ctx, core.KindTask, id, amqp.ActionToggled)
	return done, nil
}

func (h *Household) DeleteTask(ctx context.Context, id int64) error {
	if err := h.store.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	h.publish(ctx, core.KindTask, id, amqp.ActionDeleted)
	return nil
}

// Tasks lists every task, newest first.
func (h *Household) Tasks(ctx context.Context) ([]core.Task, error) {
	return h.store.ListTasks(ctx, storage.Recent(0))
}

func (h *Household) CreateExpense(ctx context.Context, in core.ExpenseInput) (int64, error) {
	e, err := in.ToExpense()
	if err != nil {
		return 0, err
	}
	id, err := h.store.CreateExpense(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("save expense: %w", err)
	}
	h.publish(ctx, core.KindExpense, id, amqp.ActionCreated)
	return id, nil
}

// ExpenseSummary is the expenses page payload.
type ExpenseSummary struct {
	Expenses   []core.Expense
	Total      core.Money
	Categories []core.CategoryTotal
}

// Expenses lists every expense, newest first, with the running total.
func (h *Household) Expenses(ctx context.Context) (ExpenseSummary, error) {
	var out ExpenseSummary
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.Expenses, err = h.store.ListExpenses(ctx, storage.Recent(0))
		return err
	})
	g.Go(func() error {
		var err error
		out.Total, err = h.store.ExpenseTotal(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		out.Categories, err = h.store.ExpenseTotalsByCategory(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return ExpenseSummary{}, fmt.Errorf("load expenses: %w", err)
	}
	return out, nil
}

func (h *Household) CategoryTotals(ctx context.Context) ([]core.CategoryTotal, error) {
	return h.store.ExpenseTotalsByCategory(ctx)
}

func (h *Household) CreateShoppingItem(ctx context.Context, in core.ShoppingItemInput) (int64, error) {
	it, err := in.ToShoppingItem()
	if err != nil {
		return 0, err
	}
	id, err := h.store.CreateShoppingItem(ctx, it)
	if err != nil {
		return 0, fmt.Errorf("save shopping item: %w", err)
	}
	h.publish(ctx, core.KindShoppingItem, id, amqp.ActionCreated)
	return id, nil
}

func (h *Household) ToggleShoppingItem(ctx context.Context, id int64) (bool, error) {
	bought, err := h.store.ToggleShoppingItem(ctx, id)
	if err != nil {
		return false, fmt.Errorf("toggle shopping item: %w", err)
	}
	h.publish(ctx, core.KindShoppingItem, id, amqp.ActionToggled)
	return bought, nil
}

// ShoppingItems lists every item, newest first.
func (h *Household) ShoppingItems(ctx context.Context) ([]core.ShoppingItem, error) {
	return h.store.ListShoppingItems(ctx, storage.Newest(0))
}

func (h *Household) CreateMember(ctx context.Context, in core.MemberInput) (int64, error) {
	m, err := in.ToMember()
	if err != nil {
		return 0, err
	}
	id, err := h.store.CreateMember(ctx, m)
	if err != nil {
		return 0, fmt.Errorf("save member: %w", err)
	}
	h.publish(ctx, core.KindMember, id, amqp.ActionCreated)
	return id, nil
}

func (h *Household) Members(ctx context.Context) ([]core.Member, error) {
	return h.store.ListMembers(ctx)
}

// Dashboard reads the recent records of every kind and the expense total
// concurrently. The first failure cancels the remaining reads.
func (h *Household) Dashboard(ctx context.Context) (core.Dashboard, error) {
	var d core.Dashboard
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		d.Tasks, err = h.store.ListTasks(ctx, storage.Recent(core.DashboardTasks))
		return err
	})
	g.Go(func() error {
		var err error
		d.Expenses, err = h.store.ListExpenses(ctx, storage.Recent(core.DashboardExpenses))
		return err
	})
	g.Go(func() error {
		var err error
		d.Items, err = h.store.ListShoppingItems(ctx, storage.Newest(core.DashboardItems))
		return err
	})
	g.Go(func() error {
		var err error
		d.Members, err = h.store.ListMembers(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		d.TotalExpenses, err = h.store.ExpenseTotal(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return core.Dashboard{}, fmt.Errorf("load dashboard: %w", err)
	}
	return d, nil
}

// publish never fails the caller: the row is already committed.
func (h *Household) publish(ctx context.Context, kind core.Kind, id int64, action string) {
	if h.publisher == nil {
		slog.DebugContext(ctx, "Event publisher not configured, skipping record event",
			"kind", kind, "id", id, "action", action)
		return
	}
	if err := h.publisher.PublishRecordEvent(ctx, kind, id, action); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record event",
			"kind", kind, "id", id, "action", action, "error", err)
	}
}

// Close closes the store.
func (h *Household) Close() error {
	if h.store == nil {
		return nil
	}
	if err := h.store.Close(); err != nil {
		return fmt.Errorf("close household service: %w", err)
	}
	return nil
}
