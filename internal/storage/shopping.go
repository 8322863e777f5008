package storage

import (
	"context"
	"database/sql"

	"household/internal/core"
)

var shoppingTable = table[core.ShoppingItem]{
	kind:    core.KindShoppingItem,
	columns: "id, name, qty, bought",
	scan: func(row rowScanner) (core.ShoppingItem, error) {
		var (
			it  core.ShoppingItem
			qty sql.NullString
		)
		if err := row.Scan(&it.ID, &it.Name, &qty, &it.Bought); err != nil {
			return core.ShoppingItem{}, err
		}
		it.Qty = qty.String
		return it, nil
	},
}

func (s *Store) CreateShoppingItem(ctx context.Context, it core.ShoppingItem) (int64, error) {
	return s.Insert(ctx, core.KindShoppingItem, Fields{
		{"name", it.Name},
		{"qty", nullString(it.Qty)},
		{"bought", false},
	})
}

func (s *Store) GetShoppingItem(ctx context.Context, id int64) (core.ShoppingItem, error) {
	return get(ctx, s, shoppingTable, id)
}

func (s *Store) ListShoppingItems(ctx context.Context, q Query) ([]core.ShoppingItem, error) {
	return list(ctx, s, shoppingTable, q, "")
}

// ToggleShoppingItem flips bought and returns the new value.
func (s *Store) ToggleShoppingItem(ctx context.Context, id int64) (bool, error) {
	return s.toggle(ctx, core.KindShoppingItem, "bought", id)
}
