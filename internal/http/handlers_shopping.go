package http

import (
	"net/http"

	"household/internal/core"
	applog "household/internal/log"
)

func (s *Server) handleListShopping(w http.ResponseWriter, r *http.Request) {
	items, err := s.household.ShoppingItems(r.Context())
	if err != nil {
		s.fail(w, r, core.KindShoppingItem, 0, applog.OpList, err)
		return
	}
	s.render(w, r, "shopping.html", page{Title: "Shopping", Active: "/shopping", Data: items})
}

func (s *Server) handleCreateShopping(w http.ResponseWriter, r *http.Request) {
	if !ParseFormOrFail(w, r) {
		return
	}
	id, err := s.household.CreateShoppingItem(r.Context(), ParseShoppingItemInput(r.PostForm))
	s.created(w, r, core.KindShoppingItem, "/shopping", id, err, "Item added to the list")
}

func (s *Server) handleToggleShopping(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	bought, err := s.household.ToggleShoppingItem(r.Context(), id)
	if err != nil {
		s.fail(w, r, core.KindShoppingItem, id, applog.OpToggle, err)
		return
	}
	s.count(&s.appMetrics.toggled)
	requestLogger(r).DebugContext(r.Context(), "Shopping item toggled",
		applog.FieldRecordID, id, "bought", bought)
	s.redirect(w, r, NewRedirect("/shopping").Back(r))
}
