package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const jobColumns = `id, title, company, location, description, job_type, experience_level,
	salary_min, salary_max, salary_currency, required_skills, source, source_url,
	posted_date, application_url, description_embedding, title_embedding,
	is_active, is_verified, metadata, created_at, updated_at`

func scanJobPosting(row pgx.Row) (*JobPosting, error) {
	var p JobPosting
	var metadataJSON []byte
	err := row.Scan(&p.ID, &p.Title, &p.Company, &p.Location, &p.Description,
		&p.JobType, &p.ExperienceLevel, &p.SalaryMin, &p.SalaryMax, &p.SalaryCurrency,
		&p.RequiredSkills, &p.Source, &p.SourceURL, &p.PostedDate, &p.ApplicationURL,
		&p.DescriptionEmbedding, &p.TitleEmbedding, &p.IsActive, &p.IsVerified,
		&metadataJSON, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan job posting: %w", err)
	}
	if metadataJSON != nil {
		_ = json.Unmarshal(metadataJSON, &p.Metadata)
	}
	return &p, nil
}

// JobPostingInput holds the fields for inserting a scraped job posting
type JobPostingInput struct {
	Title                string
	Company              string
	Location             *string
	Description          string
	JobType              *string
	ExperienceLevel      *string
	SalaryMin            *float64
	SalaryMax            *float64
	SalaryCurrency       string
	RequiredSkills       []string
	Source               string
	SourceURL            string
	PostedDate           *time.Time
	ApplicationURL       *string
	DescriptionEmbedding []float64
	TitleEmbedding       []float64
	Metadata             map[string]any
}

// InsertJobPosting inserts a job posting, skipping duplicates by source URL.
// Returns the posting ID and whether a new row was inserted.
func (db *DB) InsertJobPosting(ctx context.Context, input *JobPostingInput) (uuid.UUID, bool, error) {
	var metadataJSON []byte
	if input.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(input.Metadata)
		if err != nil {
			return uuid.Nil, false, fmt.Errorf("failed to marshal metadata: %w", err)
		}
	}

	currency := input.SalaryCurrency
	if currency == "" {
		currency = "USD"
	}

	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO job_postings (title, company, location, description, job_type,
		                           experience_level, salary_min, salary_max, salary_currency,
		                           required_skills, source, source_url, posted_date,
		                           application_url, description_embedding, title_embedding,
		                           is_active, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, TRUE, $17)
		 ON CONFLICT (source_url) DO NOTHING
		 RETURNING id`,
		input.Title, input.Company, input.Location, input.Description, input.JobType,
		input.ExperienceLevel, input.SalaryMin, input.SalaryMax, currency,
		StringArray(input.RequiredSkills), input.Source, input.SourceURL, input.PostedDate,
		input.ApplicationURL, input.DescriptionEmbedding, input.TitleEmbedding, metadataJSON,
	).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			// Conflict: posting already exists for this source URL
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, fmt.Errorf("failed to insert job posting: %w", err)
	}
	return id, true, nil
}

// GetJobPosting retrieves a job posting by its ID
func (db *DB) GetJobPosting(ctx context.Context, id uuid.UUID) (*JobPosting, error) {
	return scanJobPosting(db.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM job_postings WHERE id = $1`, id))
}

// ListJobPostingsOptions contains filters for listing job postings
type ListJobPostingsOptions struct {
	Search     string // matches title or description
	Location   string
	JobType    string
	Company    string
	Source     string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// ListJobPostings lists job postings with optional filters and pagination
func (db *DB) ListJobPostings(ctx context.Context, opts ListJobPostingsOptions) ([]JobPosting, int, error) {
	// Build WHERE clause dynamically
	var conditions []string
	var args []interface{}
	argIndex := 1

	if opts.ActiveOnly {
		conditions = append(conditions, "is_active = TRUE")
	}
	if opts.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+opts.Search+"%")
		argIndex++
	}
	if opts.Location != "" {
		conditions = append(conditions, fmt.Sprintf("location ILIKE $%d", argIndex))
		args = append(args, "%"+opts.Location+"%")
		argIndex++
	}
	if opts.JobType != "" {
		conditions = append(conditions, fmt.Sprintf("job_type = $%d", argIndex))
		args = append(args, opts.JobType)
		argIndex++
	}
	if opts.Company != "" {
		conditions = append(conditions, fmt.Sprintf("company ILIKE $%d", argIndex))
		args = append(args, "%"+opts.Company+"%")
		argIndex++
	}
	if opts.Source != "" {
		conditions = append(conditions, fmt.Sprintf("source = $%d", argIndex))
		args = append(args, opts.Source)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Get total count
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM job_postings %s", whereClause)
	var total int
	if err := db.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count job postings: %w", err)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(
		`SELECT %s FROM job_postings %s
		 ORDER BY posted_date DESC NULLS LAST, created_at DESC
		 LIMIT $%d OFFSET $%d`,
		jobColumns, whereClause, argIndex, argIndex+1,
	)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list job postings: %w", err)
	}
	defer rows.Close()

	var postings []JobPosting
	for rows.Next() {
		p, err := scanJobPosting(rows)
		if err != nil {
			return nil, 0, err
		}
		postings = append(postings, *p)
	}
	return postings, total, nil
}

// ListActiveJobCandidates retrieves active postings for recommendation scoring,
// newest first, capped at limit
func (db *DB) ListActiveJobCandidates(ctx context.Context, limit int) ([]JobPosting, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM job_postings
		 WHERE is_active = TRUE
		 ORDER BY posted_date DESC NULLS LAST, created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list job candidates: %w", err)
	}
	defer rows.Close()

	var postings []JobPosting
	for rows.Next() {
		p, err := scanJobPosting(rows)
		if err != nil {
			return nil, err
		}
		postings = append(postings, *p)
	}
	return postings, nil
}

// ListActiveJobsWithEmbeddings retrieves active postings that have a description
// embedding, for chat context ranking
func (db *DB) ListActiveJobsWithEmbeddings(ctx context.Context, limit int) ([]JobPosting, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM job_postings
		 WHERE is_active = TRUE AND description_embedding IS NOT NULL
		 ORDER BY posted_date DESC NULLS LAST, created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs with embeddings: %w", err)
	}
	defer rows.Close()

	var postings []JobPosting
	for rows.Next() {
		p, err := scanJobPosting(rows)
		if err != nil {
			return nil, err
		}
		postings = append(postings, *p)
	}
	return postings, nil
}

// JobPostingUpdate holds optional admin-editable fields; nil fields are left unchanged
type JobPostingUpdate struct {
	Title           *string
	Company         *string
	Location        *string
	Description     *string
	JobType         *string
	ExperienceLevel *string
	SalaryMin       *float64
	SalaryMax       *float64
	IsActive        *bool
	IsVerified      *bool
}

// UpdateJobPosting applies a partial update and returns the updated posting
func (db *DB) UpdateJobPosting(ctx context.Context, id uuid.UUID, update JobPostingUpdate) (*JobPosting, error) {
	var sets []string
	var args []interface{}
	argNum := 1

	add := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argNum))
		args = append(args, value)
		argNum++
	}

	if update.Title != nil {
		add("title", *update.Title)
	}
	if update.Company != nil {
		add("company", *update.Company)
	}
	if update.Location != nil {
		add("location", *update.Location)
	}
	if update.Description != nil {
		add("description", *update.Description)
	}
	if update.JobType != nil {
		add("job_type", *update.JobType)
	}
	if update.ExperienceLevel != nil {
		add("experience_level", *update.ExperienceLevel)
	}
	if update.SalaryMin != nil {
		add("salary_min", *update.SalaryMin)
	}
	if update.SalaryMax != nil {
		add("salary_max", *update.SalaryMax)
	}
	if update.IsActive != nil {
		add("is_active", *update.IsActive)
	}
	if update.IsVerified != nil {
		add("is_verified", *update.IsVerified)
	}

	if len(sets) == 0 {
		return db.GetJobPosting(ctx, id)
	}

	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE job_postings SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), argNum, jobColumns,
	)

	return scanJobPosting(db.pool.QueryRow(ctx, query, args...))
}

// DeleteJobPosting removes a job posting (saved jobs cascade)
func (db *DB) DeleteJobPosting(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM job_postings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job posting: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("job posting not found: %s", id)
	}
	return nil
}

// AdminStats aggregates counts for the admin dashboard
type AdminStats struct {
	TotalUsers    int            `json:"total_users"`
	TotalJobs     int            `json:"total_jobs"`
	ActiveJobs    int            `json:"active_jobs"`
	SavedJobs     int            `json:"saved_jobs"`
	Conversations int            `json:"conversations"`
	JobsBySource  map[string]int `json:"jobs_by_source"`
}

// GetAdminStats collects dashboard counts in a single round of queries
func (db *DB) GetAdminStats(ctx context.Context) (*AdminStats, error) {
	stats := &AdminStats{JobsBySource: map[string]int{}}

	err := db.pool.QueryRow(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM users),
		   (SELECT COUNT(*) FROM job_postings),
		   (SELECT COUNT(*) FROM job_postings WHERE is_active = TRUE),
		   (SELECT COUNT(*) FROM saved_jobs),
		   (SELECT COUNT(*) FROM conversations)`,
	).Scan(&stats.TotalUsers, &stats.TotalJobs, &stats.ActiveJobs, &stats.SavedJobs, &stats.Conversations)
	if err != nil {
		return nil, fmt.Errorf("failed to get admin stats: %w", err)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT source, COUNT(*) FROM job_postings GROUP BY source`)
	if err != nil {
		return nil, fmt.Errorf("failed to get jobs by source: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return nil, fmt.Errorf("failed to scan source count: %w", err)
		}
		stats.JobsBySource[source] = count
	}
	return stats, nil
}
