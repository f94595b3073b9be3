package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/vught/pacekeeper/internal/training"
)

type analyticsResponse struct {
	Weeks []training.WeekSummary `json:"weeks"`
	Zones []training.ZoneShare   `json:"zones"`
}

// handleAnalytics reports weekly volume summaries and the pace zone
// distribution over the covered window.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, err := s.currentUser(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	weeks := 12
	if v := r.URL.Query().Get("weeks"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 52 {
			weeks = n
		}
	}

	now := time.Now().UTC()
	from := now.AddDate(0, 0, -7*weeks)
	workouts, err := s.db.CompletedWorkoutsBetween(r.Context(), userID, from, now.AddDate(0, 0, 1))
	if err != nil {
		s.writeError(w, err)
		return
	}
	zones, err := s.db.ActivePaceZones(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analyticsResponse{
		Weeks: training.WeeklySummaries(workouts, weeks, now),
		Zones: training.ZoneDistribution(workouts, zones),
	})
}
