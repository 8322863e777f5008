package http

import (
	"net/http"

	"household/internal/core"
	applog "household/internal/log"
)

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.household.Tasks(r.Context())
	if err != nil {
		s.fail(w, r, core.KindTask, 0, applog.OpList, err)
		return
	}
	s.render(w, r, "tasks.html", page{Title: "Tasks", Active: "/tasks", Data: tasks})
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	if !ParseFormOrFail(w, r) {
		return
	}
	id, err := s.household.CreateTask(r.Context(), ParseTaskInput(r.PostForm))
	s.created(w, r, core.KindTask, "/tasks", id, err, "Task added")
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	done, err := s.household.ToggleTask(r.Context(), id)
	if err != nil {
		s.fail(w, r, core.KindTask, id, applog.OpToggle, err)
		return
	}
	s.count(&s.appMetrics.toggled)
	requestLogger(r).DebugContext(r.Context(), "Task toggled",
		applog.FieldRecordID, id, "done", done)
	s.redirect(w, r, NewRedirect("/tasks").Back(r))
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := s.household.DeleteTask(r.Context(), id); err != nil {
		s.fail(w, r, core.KindTask, id, applog.OpDelete, err)
		return
	}
	s.count(&s.appMetrics.deleted)
	requestLogger(r).InfoContext(r.Context(), "Task deleted", applog.FieldRecordID, id)
	s.redirect(w, r, NewRedirect("/tasks").Back(r).Info("Task deleted"))
}
