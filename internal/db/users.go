package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, password_hash, full_name, resume_text, resume_embedding,
	skills, experience_years, education_level, preferred_locations, preferred_job_types,
	onboarding_completed, is_admin, created_at, updated_at, last_login`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.ResumeText,
		&u.ResumeEmbedding, &u.Skills, &u.ExperienceYears, &u.EducationLevel,
		&u.PreferredLocations, &u.PreferredJobTypes, &u.OnboardingCompleted,
		&u.IsAdmin, &u.CreatedAt, &u.UpdatedAt, &u.LastLogin)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

// CreateUser creates a new user and returns its ID
func (db *DB) CreateUser(ctx context.Context, email, passwordHash, fullName string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, full_name)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		email, passwordHash, fullName,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

// GetUser retrieves a user by ID
func (db *DB) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return scanUser(db.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetUserByEmail retrieves a user by email
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(db.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// CheckEmailExists reports whether an email is already registered
func (db *DB) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return exists, nil
}

// UpdatePassword updates a user's password hash
func (db *DB) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`,
		passwordHash, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// UpdateLastLogin stamps the user's last successful login time
func (db *DB) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE users SET last_login = NOW() WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// UserProfileUpdate holds optional profile fields; nil fields are left unchanged
type UserProfileUpdate struct {
	FullName            *string
	Skills              []string
	ExperienceYears     *int
	EducationLevel      *string
	PreferredLocations  []string
	PreferredJobTypes   []string
	OnboardingCompleted *bool
}

// UpdateUserProfile applies a partial profile update and returns the updated user
func (db *DB) UpdateUserProfile(ctx context.Context, userID uuid.UUID, update UserProfileUpdate) (*User, error) {
	var sets []string
	var args []interface{}
	argNum := 1

	add := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argNum))
		args = append(args, value)
		argNum++
	}

	if update.FullName != nil {
		add("full_name", *update.FullName)
	}
	if update.Skills != nil {
		add("skills", StringArray(update.Skills))
	}
	if update.ExperienceYears != nil {
		add("experience_years", *update.ExperienceYears)
	}
	if update.EducationLevel != nil {
		add("education_level", *update.EducationLevel)
	}
	if update.PreferredLocations != nil {
		add("preferred_locations", StringArray(update.PreferredLocations))
	}
	if update.PreferredJobTypes != nil {
		add("preferred_job_types", StringArray(update.PreferredJobTypes))
	}
	if update.OnboardingCompleted != nil {
		add("onboarding_completed", *update.OnboardingCompleted)
	}

	if len(sets) == 0 {
		return db.GetUser(ctx, userID)
	}

	sets = append(sets, "updated_at = NOW()")
	args = append(args, userID)
	query := fmt.Sprintf(
		`UPDATE users SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), argNum, userColumns,
	)

	return scanUser(db.pool.QueryRow(ctx, query, args...))
}

// UpdateUserResume stores parsed resume data on the user and clears any stale
// resume embedding so the next recommendation request regenerates it
func (db *DB) UpdateUserResume(ctx context.Context, userID uuid.UUID, resumeText string, skills []string, experienceYears *int, educationLevel *string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE users SET resume_text = $1, skills = $2,
		        experience_years = COALESCE($3, experience_years),
		        education_level = COALESCE($4, education_level),
		        resume_embedding = NULL,
		        updated_at = NOW()
		 WHERE id = $5`,
		resumeText, StringArray(skills), experienceYears, educationLevel, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update resume: %w", err)
	}
	return nil
}

// UpdateUserEmbedding persists a generated resume embedding
func (db *DB) UpdateUserEmbedding(ctx context.Context, userID uuid.UUID, embedding []float64) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE users SET resume_embedding = $1, updated_at = NOW() WHERE id = $2`,
		embedding, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user embedding: %w", err)
	}
	return nil
}

// ListUsers retrieves users for admin views, newest first
func (db *DB) ListUsers(ctx context.Context, limit, offset int) ([]User, int, error) {
	var total int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, total, nil
}
