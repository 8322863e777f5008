package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"household/internal/amqp"
	"household/internal/core"
	"household/internal/storage"
)

type publishedEvent struct {
	kind   core.Kind
	id     int64
	action string
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (f *fakePublisher) PublishRecordEvent(_ context.Context, kind core.Kind, id int64, action string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{kind, id, action})
	return f.err
}

func newTestHousehold(t *testing.T, pub EventPublisher) *Household {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "household.db"))
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	h := NewHousehold(store, pub)
	t.Cleanup(func() { h.Close() })
	return h
}

func TestHousehold_CreateExpense(t *testing.T) {
	tests := []struct {
		name      string
		input     core.ExpenseInput
		wantErr   bool
		wantTotal int64
	}{
		{"valid amount", core.ExpenseInput{Description: "Groceries", Amount: "12.50"}, false, 1250},
		{"comma decimal", core.ExpenseInput{Description: "Bus", Amount: "3,20"}, false, 320},
		{"not a number", core.ExpenseInput{Description: "Groceries", Amount: "abc"}, true, 0},
		{"missing description", core.ExpenseInput{Amount: "5"}, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &fakePublisher{}
			h := newTestHousehold(t, pub)
			ctx := context.Background()

			_, err := h.CreateExpense(ctx, tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateExpense() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !core.IsValidation(err) {
				t.Errorf("error %v is not a validation error", err)
			}

			summary, err := h.Expenses(ctx)
			if err != nil {
				t.Fatalf("Expenses() error = %v", err)
			}
			if summary.Total.Cents != tt.wantTotal {
				t.Errorf("total = %d, want %d", summary.Total.Cents, tt.wantTotal)
			}
			wantRows := 0
			if !tt.wantErr {
				wantRows = 1
			}
			if len(summary.Expenses) != wantRows {
				t.Errorf("rows = %d, want %d", len(summary.Expenses), wantRows)
			}
			if len(pub.events) != wantRows {
				t.Errorf("published %d events, want %d", len(pub.events), wantRows)
			}
		})
	}
}

func TestHousehold_TaskLifecycle(t *testing.T) {
	pub := &fakePublisher{}
	h := newTestHousehold(t, pub)
	ctx := context.Background()

	id, err := h.CreateTask(ctx, core.TaskInput{Title: "  Water plants  ", DueDate: "2024-06-01"})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	done, err := h.ToggleTask(ctx, id)
	if err != nil || !done {
		t.Fatalf("first ToggleTask() = %v, %v", done, err)
	}
	done, err = h.ToggleTask(ctx, id)
	if err != nil || done {
		t.Fatalf("second ToggleTask() = %v, %v", done, err)
	}

	if err := h.DeleteTask(ctx, id); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if _, err := h.ToggleTask(ctx, id); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("toggle after delete error = %v, want ErrNotFound", err)
	}
	if err := h.DeleteTask(ctx, id); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}

	want := []string{amqp.ActionCreated, amqp.ActionToggled, amqp.ActionToggled, amqp.ActionDeleted}
	if len(pub.events) != len(want) {
		t.Fatalf("events = %+v", pub.events)
	}
	for i, a := range want {
		if pub.events[i].action != a || pub.events[i].kind != core.KindTask || pub.events[i].id != id {
			t.Errorf("event[%d] = %+v, want task/%d/%s", i, pub.events[i], id, a)
		}
	}

	tasks, err := h.Tasks(ctx)
	if err != nil {
		t.Fatalf("Tasks() error = %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("tasks after delete = %+v", tasks)
	}
}

func TestHousehold_RejectedInputPersistsNothing(t *testing.T) {
	h := newTestHousehold(t, nil)
	ctx := context.Background()

	if _, err := h.CreateTask(ctx, core.TaskInput{Title: "   "}); !core.IsValidation(err) {
		t.Errorf("CreateTask() error = %v, want validation", err)
	}
	if _, err := h.CreateTask(ctx, core.TaskInput{Title: "x", DueDate: "tomorrow"}); !core.IsValidation(err) {
		t.Errorf("CreateTask() bad date error = %v, want validation", err)
	}
	if _, err := h.CreateShoppingItem(ctx, core.ShoppingItemInput{Qty: "2"}); !core.IsValidation(err) {
		t.Errorf("CreateShoppingItem() error = %v, want validation", err)
	}
	if _, err := h.CreateMember(ctx, core.MemberInput{Role: "Cook"}); !core.IsValidation(err) {
		t.Errorf("CreateMember() error = %v, want validation", err)
	}

	d, err := h.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if len(d.Tasks)+len(d.Items)+len(d.Members)+len(d.Expenses) != 0 {
		t.Errorf("dashboard not empty: %+v", d)
	}
}

func TestHousehold_PublishFailureDoesNotFailRequest(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	h := newTestHousehold(t, pub)

	id, err := h.CreateMember(context.Background(), core.MemberInput{Name: "Ada"})
	if err != nil {
		t.Fatalf("CreateMember() error = %v", err)
	}
	if id == 0 {
		t.Error("expected a persisted id")
	}
}

func TestHousehold_Dashboard(t *testing.T) {
	h := newTestHousehold(t, nil)
	ctx := context.Background()

	empty, err := h.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if empty.TotalExpenses.Cents != 0 {
		t.Errorf("empty total = %d, want 0", empty.TotalExpenses.Cents)
	}

	var wantTotal int64
	for i := 0; i < 8; i++ {
		if _, err := h.CreateTask(ctx, core.TaskInput{Title: "task"}); err != nil {
			t.Fatalf("CreateTask() error = %v", err)
		}
		if _, err := h.CreateExpense(ctx, core.ExpenseInput{Description: "e", Amount: "1.25"}); err != nil {
			t.Fatalf("CreateExpense() error = %v", err)
		}
		wantTotal += 125
		if _, err := h.CreateShoppingItem(ctx, core.ShoppingItemInput{Name: "item"}); err != nil {
			t.Fatalf("CreateShoppingItem() error = %v", err)
		}
	}
	for _, name := range []string{"Ada", "Bo", "Cy"} {
		if _, err := h.CreateMember(ctx, core.MemberInput{Name: name}); err != nil {
			t.Fatalf("CreateMember() error = %v", err)
		}
	}

	d, err := h.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if len(d.Tasks) != core.DashboardTasks {
		t.Errorf("tasks = %d, want %d", len(d.Tasks), core.DashboardTasks)
	}
	if len(d.Expenses) != core.DashboardExpenses {
		t.Errorf("expenses = %d, want %d", len(d.Expenses), core.DashboardExpenses)
	}
	if len(d.Items) != core.DashboardItems {
		t.Errorf("items = %d, want %d", len(d.Items), core.DashboardItems)
	}
	if len(d.Members) != 3 || d.Members[0].Name != "Ada" {
		t.Errorf("members = %+v", d.Members)
	}
	if d.TotalExpenses.Cents != wantTotal {
		t.Errorf("total = %d, want %d", d.TotalExpenses.Cents, wantTotal)
	}
	if d.Items[0].ID < d.Items[len(d.Items)-1].ID {
		t.Error("shopping items should be newest first")
	}

	// Listing pages are unbounded.
	tasks, err := h.Tasks(ctx)
	if err != nil {
		t.Fatalf("Tasks() error = %v", err)
	}
	if len(tasks) != 8 {
		t.Errorf("Tasks() = %d rows, want 8", len(tasks))
	}
}

func TestHousehold_DashboardStoreUnavailable(t *testing.T) {
	h := newTestHousehold(t, nil)
	h.Store().Close()

	_, err := h.Dashboard(context.Background())
	if !errors.Is(err, core.ErrStoreUnavailable) {
		t.Errorf("Dashboard() error = %v, want ErrStoreUnavailable", err)
	}
}

func TestHousehold_LargeAmountsKeepTotalsReadable(t *testing.T) {
	h := newTestHousehold(t, nil)
	ctx := context.Background()

	if _, err := h.CreateExpense(ctx, core.ExpenseInput{Description: "huge", Amount: "90000000000000000"}); !core.IsValidation(err) {
		t.Fatalf("oversized amount error = %v, want validation error", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := h.CreateExpense(ctx, core.ExpenseInput{Description: "max", Amount: "99999999999.99"}); err != nil {
			t.Fatalf("CreateExpense() error = %v", err)
		}
	}

	d, err := h.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if want := 2 * core.MaxAmountCents; d.TotalExpenses.Cents != want {
		t.Errorf("total = %d, want %d", d.TotalExpenses.Cents, want)
	}
	if _, err := h.Expenses(ctx); err != nil {
		t.Errorf("Expenses() error = %v", err)
	}
	if _, err := h.CategoryTotals(ctx); err != nil {
		t.Errorf("CategoryTotals() error = %v", err)
	}
}
