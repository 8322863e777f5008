package http

import (
	"net/http"

	"household/internal/core"
	applog "household/internal/log"
)

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.household.Members(r.Context())
	if err != nil {
		s.fail(w, r, core.KindMember, 0, applog.OpList, err)
		return
	}
	s.render(w, r, "members.html", page{Title: "Members", Active: "/members", Data: members})
}

func (s *Server) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	if !ParseFormOrFail(w, r) {
		return
	}
	id, err := s.household.CreateMember(r.Context(), ParseMemberInput(r.PostForm))
	s.created(w, r, core.KindMember, "/members", id, err, "Member added")
}
