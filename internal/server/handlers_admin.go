package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/jonathan/job-recommender/internal/db"
)

// handleAdminStats returns dashboard counts.
func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetAdminStats(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to collect stats")
		return
	}
	s.jsonResponse(w, http.StatusOK, stats)
}

// handleAdminListJobs lists postings including inactive ones.
func (s *Server) handleAdminListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := db.ListJobPostingsOptions{
		Search:     q.Get("search"),
		Source:     q.Get("source"),
		ActiveOnly: false,
		Limit:      parseQueryInt(r, "limit", 50),
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

// handleAdminGetJob returns a posting by ID, active or not.
func (s *Server) handleAdminGetJob(w http.ResponseWriter, r *http.Request) {
	s.handleGetJob(w, r)
}

// adminJobUpdateRequest is the partial update body for a posting.
type adminJobUpdateRequest struct {
	Title           *string  `json:"title,omitempty"`
	Company         *string  `json:"company,omitempty"`
	Location        *string  `json:"location,omitempty"`
	Description     *string  `json:"description,omitempty"`
	JobType         *string  `json:"job_type,omitempty"`
	ExperienceLevel *string  `json:"experience_level,omitempty"`
	SalaryMin       *float64 `json:"salary_min,omitempty"`
	SalaryMax       *float64 `json:"salary_max,omitempty"`
	IsActive        *bool    `json:"is_active,omitempty"`
	IsVerified      *bool    `json:"is_verified,omitempty"`
}

// handleAdminUpdateJob applies a partial update to a posting.
func (s *Server) handleAdminUpdateJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var req adminJobUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	job, err := s.store.UpdateJobPosting(r.Context(), id, db.JobPostingUpdate{
		Title:           req.Title,
		Company:         req.Company,
		Location:        req.Location,
		Description:     req.Description,
		JobType:         req.JobType,
		ExperienceLevel: req.ExperienceLevel,
		SalaryMin:       req.SalaryMin,
		SalaryMax:       req.SalaryMax,
		IsActive:        req.IsActive,
		IsVerified:      req.IsVerified,
	})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to update job")
		return
	}
	if job == nil {
		notFound := &ErrJobNotFound{JobID: id}
		s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, job)
}

// handleAdminDeleteJob removes a posting.
func (s *Server) handleAdminDeleteJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.DeleteJobPosting(r.Context(), id); err != nil {
		notFound := &ErrJobNotFound{JobID: id}
		s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"message": "Job deleted"})
}

// handleAdminListUsers lists registered users.
func (s *Server) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", 50)
	offset := parseQueryInt(r, "offset", 0)

	users, total, err := s.store.ListUsers(r.Context(), limit, offset)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	converted := make([]any, 0, len(users))
	for i := range users {
		converted = append(converted, convertDBUserToTypesUser(&users[i]))
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"users":  converted,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// scrapeRequest triggers an ingest run.
type scrapeRequest struct {
	Source      string   `json:"source" validate:"required,oneof=indeed remoteok rss"`
	SearchTerms []string `json:"search_terms,omitempty"`
}

// handleAdminScrape starts a scrape-and-ingest run in the background and
// returns immediately. Progress is visible in the server log.
func (s *Server) handleAdminScrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	go func() {
		// Detached from the request; scraping outlives the HTTP exchange
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		result, err := s.pipeline.Run(ctx, req.Source, req.SearchTerms)
		if err != nil {
			log.Printf("[ADMIN] scrape %s failed: %v", req.Source, err)
			return
		}
		log.Printf("[ADMIN] scrape %s done: scraped=%d inserted=%d skipped=%d errors=%d",
			result.Source, result.Scraped, result.Inserted, result.Skipped, len(result.Errors))
	}()

	s.jsonResponse(w, http.StatusAccepted, map[string]string{
		"message": "Scrape started",
		"source":  req.Source,
	})
}
