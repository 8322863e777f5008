package http

import (
	"net/http"

	applog "household/internal/log"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.household.Dashboard(r.Context())
	if err != nil {
		s.fail(w, r, "", 0, applog.OpList, err)
		return
	}
	s.render(w, r, "index.html", page{Title: "Dashboard", Active: "/", Data: d})
}
