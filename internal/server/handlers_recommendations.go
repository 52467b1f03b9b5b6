package server

import (
	"fmt"
	"net/http"
)

// handleRecommendations returns ranked job recommendations for the
// authenticated user. Query parameter: limit (default 10, max 50).
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	limit := parseQueryInt(r, "limit", 10)
	if limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	recommendations, err := s.recommender.Recommend(r.Context(), user, limit)
	if err != nil {
		// Admins get the underlying error; everyone else a generic message
		message := "failed to generate recommendations"
		if user.IsAdmin {
			message = fmt.Sprintf("%s: %v", message, err)
		}
		s.errorResponse(w, http.StatusInternalServerError, message)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"recommendations": recommendations,
		"total":           len(recommendations),
	})
}
