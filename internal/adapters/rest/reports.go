package rest

import (
	"CivicPulse/internal/core/lifecycle"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, s.log, err)
		return
	}
	loc, err := location(req.Latitude, req.Longitude)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	report, err := s.reports.Submit(r.Context(), actorFrom(r.Context()), lifecycle.SubmitInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    loc,
	})
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReport(report))
}

func (s *Server) handleListAll(w http.ResponseWriter, r *http.Request) {
	reports, err := s.reports.ListAll(r.Context(), actorFrom(r.Context()), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toReports(reports))
}

func (s *Server) handleListMine(w http.ResponseWriter, r *http.Request) {
	reports, err := s.reports.ListMine(r.Context(), actorFrom(r.Context()))
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toReports(reports))
}

func (s *Server) handleListAssigned(w http.ResponseWriter, r *http.Request) {
	reports, err := s.reports.ListAssigned(r.Context(), actorFrom(r.Context()))
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toReports(reports))
}

func (s *Server) handleListStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := s.reports.ListStaff(r.Context(), actorFrom(r.Context()))
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toUsers(staff))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"), "report id")
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	report, err := s.reports.Get(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toReport(report))
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"), "report id")
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	var req assignRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, s.log, err)
		return
	}
	staffID, err := parseID(req.StaffID, "staff id")
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	report, err := s.reports.Assign(r.Context(), actorFrom(r.Context()), id, staffID)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toReport(report))
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"), "report id")
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	var req resolveRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, s.log, err)
		return
	}
	loc, err := location(req.CurrentLatitude, req.CurrentLongitude)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	report, err := s.reports.Resolve(r.Context(), actorFrom(r.Context()), id, lifecycle.ResolveInput{
		ProofPhotoURL: req.ProofPhotoURL,
		Current:       loc,
	})
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toReport(report))
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"), "report id")
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	var req verifyRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, s.log, err)
		return
	}
	loc, err := location(req.CurrentLatitude, req.CurrentLongitude)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	report, err := s.reports.Verify(r.Context(), actorFrom(r.Context()), id, loc)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toReport(report))
}
