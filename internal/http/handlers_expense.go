package http

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"net/http"

	"household/internal/charts"
	"household/internal/core"
	applog "household/internal/log"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	summary, err := s.household.Expenses(r.Context())
	if err != nil {
		s.fail(w, r, core.KindExpense, 0, applog.OpList, err)
		return
	}
	s.render(w, r, "expenses.html", page{Title: "Expenses", Active: "/expenses", Data: summary})
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if !ParseFormOrFail(w, r) {
		return
	}
	id, err := s.household.CreateExpense(r.Context(), ParseExpenseInput(r.PostForm))
	s.created(w, r, core.KindExpense, "/expenses", id, err, "Expense recorded")
}

// handleExpenseChart serves the per-category bar chart; 204 when there are
// no expenses yet.
func (s *Server) handleExpenseChart(w http.ResponseWriter, r *http.Request) {
	totals, err := s.household.CategoryTotals(r.Context())
	if err != nil {
		s.fail(w, r, core.KindExpense, 0, applog.OpRender, err)
		return
	}
	if len(totals) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	key := chartKey(totals)
	png, ok := s.chartCache.Get(key)
	if !ok {
		var buf bytes.Buffer
		if err := charts.CategoryBars(&buf, totals); err != nil {
			s.fail(w, r, core.KindExpense, 0, applog.OpRender, err)
			return
		}
		png = buf.Bytes()
		s.chartCache.Set(key, png)
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// chartKey fingerprints the totals a chart is drawn from, so an unchanged
// expense table reuses the last rendering.
func chartKey(totals []core.CategoryTotal) string {
	h := fnv.New64a()
	for _, t := range totals {
		fmt.Fprintf(h, "%s\x00%d\x00", t.Category, t.Total.Cents)
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
