package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/vught/pacekeeper/internal/models"
	"github.com/vught/pacekeeper/internal/plangen"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP statuses: validation failures
// are 422 with the field and reason code, unknown methodologies and
// missing rows are 404, everything else is a 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error":  verr.Message,
			"field":  verr.Field,
			"reason": verr.Reason,
		})
		return
	}
	var nfe *plangen.NotFoundError
	if errors.As(err, &nfe) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": nfe.Error()})
		return
	}
	if errors.Is(err, pgx.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	s.log.Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// currentUser resolves the caller to a user row, creating it on first
// contact.
func (s *Server) currentUser(r *http.Request) (int, error) {
	id := identityFrom(r.Context())
	return s.db.GetOrCreateUser(r.Context(), id.Login, id.DisplayName)
}
