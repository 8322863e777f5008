package storage

import (
	"context"
	"database/sql"

	"household/internal/core"
)

var memberTable = table[core.Member]{
	kind:    core.KindMember,
	columns: "id, name, role",
	scan: func(row rowScanner) (core.Member, error) {
		var (
			m    core.Member
			role sql.NullString
		)
		if err := row.Scan(&m.ID, &m.Name, &role); err != nil {
			return core.Member{}, err
		}
		m.Role = role.String
		return m, nil
	},
}

func (s *Store) CreateMember(ctx context.Context, m core.Member) (int64, error) {
	return s.Insert(ctx, core.KindMember, Fields{
		{"name", m.Name},
		{"role", nullString(m.Role)},
	})
}

func (s *Store) GetMember(ctx context.Context, id int64) (core.Member, error) {
	return get(ctx, s, memberTable, id)
}

// ListMembers returns every member in insertion order.
func (s *Store) ListMembers(ctx context.Context) ([]core.Member, error) {
	return list(ctx, s, memberTable, Query{OrderBy: OrderID}, "")
}
