package adapthttp

import (
	"errors"
	"net/http"

	"feedback/internal/domain"
	"feedback/internal/logging"
)

func (s *Server) handleSubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rating  rating `json:"rating"`
		Comment string `json:"comment"`
	}
	err := parseBody(r, &req, func(get func(string) string) {
		req.Rating.parse(get("rating"))
		req.Comment = get("comment")
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	session := sessionFromContext(r.Context()).session
	err = s.feedback.Submit(r.Context(), session, req.Rating.value, req.Comment)
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, msgAuthRequired)
		return
	case errors.Is(err, domain.ErrInvalidFeedback):
		// Rejected by the schema; reported like any other store failure.
		logging.Ctx(r.Context()).Warn().Err(err).Msg("feedback rejected")
		writeError(w, http.StatusInternalServerError, msgServerError)
		return
	case err != nil:
		logging.Ctx(r.Context()).Error().Err(err).Msg("submit feedback failed")
		writeError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": msgFeedbackCreated})
}

func (s *Server) handleListFeedbacks(w http.ResponseWriter, r *http.Request) {
	items, err := s.feedback.List(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("list feedback failed")
		writeError(w, http.StatusInternalServerError, msgServerError)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
