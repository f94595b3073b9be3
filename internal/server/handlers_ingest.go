package server

import (
	"net/http"

	"github.com/vught/pacekeeper/internal/gpx"
)

// handleIngestGPX accepts a raw GPX document body and runs the workout
// intake pipeline on it. Re-posting the same file is a no-op thanks to
// the external id dedup.
func (s *Server) handleIngestGPX(w http.ResponseWriter, r *http.Request) {
	summary, err := gpx.Parse(r.Body)
	if err != nil {
		badRequest(w, "invalid GPX: "+err.Error())
		return
	}

	userID, err := s.currentUser(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	workout := summary.ToCompletedWorkout(userID)
	result, err := s.intakeWorkout(r.Context(), userID, &workout)
	if err != nil {
		s.writeError(w, err)
		return
	}

	status := http.StatusCreated
	if !result.Inserted {
		status = http.StatusOK
	}
	writeJSON(w, status, result)
}
