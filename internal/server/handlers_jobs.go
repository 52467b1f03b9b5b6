package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jonathan/job-recommender/internal/db"
	"github.com/jonathan/job-recommender/internal/types"
)

// handleListJobs lists active job postings with optional filters.
// Query parameters: search, location, job_type, company, source, limit, offset.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := db.ListJobPostingsOptions{
		Search:     q.Get("search"),
		Location:   q.Get("location"),
		JobType:    q.Get("job_type"),
		Company:    q.Get("company"),
		Source:     q.Get("source"),
		ActiveOnly: true,
		Limit:      parseQueryInt(r, "limit", 20),
		Offset:     parseQueryInt(r, "offset", 0),
	}

	jobs, total, err := s.store.ListJobPostings(r.Context(), opts)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"jobs":   jobs,
		"total":  total,
		"limit":  opts.Limit,
		"offset": opts.Offset,
	})
}

// handleGetJob returns a single job posting by ID.
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := s.store.GetJobPosting(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to get job")
		return
	}
	if job == nil {
		err := &ErrJobNotFound{JobID: id}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, job)
}

// handleSaveJob bookmarks a job for the authenticated user, upserting status
// and notes.
func (s *Server) handleSaveJob(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	jobID, err := pathUUID(r, "id")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	// Body is optional; an empty body means a plain bookmark
	var req types.SaveJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Status == "" {
		req.Status = "saved"
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
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

	saved, err := s.store.SaveJob(r.Context(), user.ID, jobID, req.Status, req.Notes)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to save job")
		return
	}

	s.jsonResponse(w, http.StatusCreated, saved)
}

// handleUnsaveJob removes a bookmark.
func (s *Server) handleUnsaveJob(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	jobID, err := pathUUID(r, "id")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	removed, err := s.store.UnsaveJob(r.Context(), user.ID, jobID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to unsave job")
		return
	}
	if !removed {
		s.errorResponse(w, http.StatusNotFound, "job is not saved")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"message": "Job removed from saved list"})
}

// handleListSavedJobs lists the user's saved jobs with their postings.
func (s *Server) handleListSavedJobs(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	saved, err := s.store.ListSavedJobs(r.Context(), user.ID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to list saved jobs")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"saved_jobs": saved,
		"total":      len(saved),
	})
}
