package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// prefixColumns qualifies each column in a comma-separated list with a table alias
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

// SaveJob bookmarks a job for a user, updating status/notes on repeat saves
func (db *DB) SaveJob(ctx context.Context, userID, jobID uuid.UUID, status, notes string) (*SavedJob, error) {
	if status == "" {
		status = "saved"
	}

	var s SavedJob
	err := db.pool.QueryRow(ctx,
		`INSERT INTO saved_jobs (user_id, job_id, status, notes)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, job_id) DO UPDATE SET status = $3, notes = $4
		 RETURNING id, user_id, job_id, status, notes, created_at`,
		userID, jobID, status, notes,
	).Scan(&s.ID, &s.UserID, &s.JobID, &s.Status, &s.Notes, &s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}
	return &s, nil
}

// UnsaveJob removes a saved-job entry. Returns false if it did not exist.
func (db *DB) UnsaveJob(ctx context.Context, userID, jobID uuid.UUID) (bool, error) {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM saved_jobs WHERE user_id = $1 AND job_id = $2`,
		userID, jobID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to unsave job: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// GetSavedJob retrieves a single saved-job entry, or nil if absent
func (db *DB) GetSavedJob(ctx context.Context, userID, jobID uuid.UUID) (*SavedJob, error) {
	var s SavedJob
	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, job_id, status, notes, created_at
		 FROM saved_jobs WHERE user_id = $1 AND job_id = $2`,
		userID, jobID,
	).Scan(&s.ID, &s.UserID, &s.JobID, &s.Status, &s.Notes, &s.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get saved job: %w", err)
	}
	return &s, nil
}

// ListSavedJobs retrieves a user's saved jobs with their postings, newest first
func (db *DB) ListSavedJobs(ctx context.Context, userID uuid.UUID) ([]SavedJob, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT s.id, s.user_id, s.job_id, s.status, s.notes, s.created_at, `+prefixColumns("j", jobColumns)+`
		 FROM saved_jobs s
		 JOIN job_postings j ON j.id = s.job_id
		 WHERE s.user_id = $1
		 ORDER BY s.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved jobs: %w", err)
	}
	defer rows.Close()

	var saved []SavedJob
	for rows.Next() {
		var s SavedJob
		var p JobPosting
		var metadataJSON []byte
		err := rows.Scan(&s.ID, &s.UserID, &s.JobID, &s.Status, &s.Notes, &s.CreatedAt,
			&p.ID, &p.Title, &p.Company, &p.Location, &p.Description,
			&p.JobType, &p.ExperienceLevel, &p.SalaryMin, &p.SalaryMax, &p.SalaryCurrency,
			&p.RequiredSkills, &p.Source, &p.SourceURL, &p.PostedDate, &p.ApplicationURL,
			&p.DescriptionEmbedding, &p.TitleEmbedding, &p.IsActive, &p.IsVerified,
			&metadataJSON, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan saved job: %w", err)
		}
		if metadataJSON != nil {
			_ = json.Unmarshal(metadataJSON, &p.Metadata)
		}
		s.Job = &p
		saved = append(saved, s)
	}
	return saved, nil
}
