package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/vught/pacekeeper/internal/models"
	"github.com/vught/pacekeeper/internal/training"
)

type loadResponse struct {
	Days       []models.TrainingLoad `json:"days"`
	Current    *models.TrainingLoad  `json:"current,omitempty"`
	FormStatus string                `json:"form_status,omitempty"`
	FormAdvice string                `json:"form_advice,omitempty"`
	Trend      string                `json:"trend,omitempty"`
}

// handleTrainingLoad returns the recent daily load series plus the
// current form readout derived from the latest row.
func (s *Server) handleTrainingLoad(w http.ResponseWriter, r *http.Request) {
	userID, err := s.currentUser(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	days := 90
	if v := r.URL.Query().Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 366 {
			days = n
		}
	}

	now := time.Now().UTC()
	from := now.AddDate(0, 0, -days)
	history, err := s.db.LoadHistory(r.Context(), userID, from, now)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := loadResponse{Days: history}
	if len(history) > 0 {
		current := history[len(history)-1]
		resp.Current = &current
		resp.FormStatus, resp.FormAdvice = training.FormStatus(current.TSB)
		resp.Trend = trendFrom(history)
	}
	writeJSON(w, http.StatusOK, resp)
}

// trendFrom compares the latest chronic load against the newest sample
// at least a week older. Without such a sample there is no baseline to
// compare against, so the trend reads maintaining.
func trendFrom(history []models.TrainingLoad) string {
	if len(history) == 0 {
		return ""
	}
	current := history[len(history)-1]
	weekAgo := current.Date.AddDate(0, 0, -7)
	var baseline float64
	found := false
	for _, d := range history {
		if !d.Date.After(weekAgo) {
			baseline = d.CTL
			found = true
		}
	}
	if !found {
		return "maintaining"
	}
	return training.FitnessTrend(current.CTL, baseline)
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	userID, err := s.currentUser(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	records, err := s.db.ListRecords(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
