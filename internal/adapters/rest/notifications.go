package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	notes, err := s.notes.List(r.Context(), actorFrom(r.Context()))
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toNotifications(notes))
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"), "notification id")
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	if err := s.notes.MarkRead(r.Context(), actorFrom(r.Context()), id); err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Notification marked as read"})
}

func (s *Server) handleDeleteNotification(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"), "notification id")
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	if err := s.notes.Delete(r.Context(), actorFrom(r.Context()), id); err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Notification deleted"})
}

func (s *Server) handleDeleteAllNotifications(w http.ResponseWriter, r *http.Request) {
	if err := s.notes.DeleteAll(r.Context(), actorFrom(r.Context())); err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "All notifications cleared"})
}
