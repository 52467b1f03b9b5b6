package server

import (
	"encoding/json"
	"net/http"

	"github.com/jonathan/job-recommender/internal/db"
	"github.com/jonathan/job-recommender/internal/types"
)

// handleMe returns the authenticated user's profile.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, convertDBUserToTypesUser(user))
}

// handleGetProfile returns the authenticated user's profile including resume text.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	profile := map[string]any{
		"user":        convertDBUserToTypesUser(user),
		"resume_text": user.ResumeText,
	}
	s.jsonResponse(w, http.StatusOK, profile)
}

// handleUpdateProfile applies a partial profile update.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	var req types.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	updated, err := s.store.UpdateUserProfile(r.Context(), user.ID, db.UserProfileUpdate{
		FullName:            req.FullName,
		Skills:              req.Skills,
		ExperienceYears:     req.ExperienceYears,
		EducationLevel:      req.EducationLevel,
		PreferredLocations:  req.PreferredLocations,
		PreferredJobTypes:   req.PreferredJobTypes,
		OnboardingCompleted: req.OnboardingCompleted,
	})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	s.jsonResponse(w, http.StatusOK, convertDBUserToTypesUser(updated))
}

// handleUpdatePassword changes the authenticated user's password.
func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.authHandler.UpdatePasswordWithUserID(w, r, user.ID)
}

// handleUploadResume accepts plain resume text, parses it and updates the
// user's profile. The stored embedding is cleared so the next recommendation
// request rebuilds it from the new resume.
func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	var req types.UploadResumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	parsed := s.resumeParser.Parse(r.Context(), req.Text)

	if err := s.store.UpdateUserResume(r.Context(), user.ID, req.Text, parsed.Skills, parsed.ExperienceYears, parsed.EducationLevel); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to store resume")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"message": "Resume uploaded successfully",
		"parsed":  parsed,
	})
}

// handleSkillGap returns the skill gap analysis between the user and a posting.
func (s *Server) handleSkillGap(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	jobID, err := pathUUID(r, "job_id")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := s.store.GetJobPosting(r.Context(), jobID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to get job")
		return
	}
	if job == nil {
		notFound := &ErrJobNotFound{JobID: jobID}
		s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, s.gapAnalyzer.Analyze(r.Context(), user, job))
}
