package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// UpsertSkill inserts a normalized skill into the taxonomy and returns its ID
func (db *DB) UpsertSkill(ctx context.Context, name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO skills (name)
		 VALUES ($1)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`,
		name,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to upsert skill: %w", err)
	}
	return id, nil
}

// LinkJobSkill associates a taxonomy skill with a job posting
func (db *DB) LinkJobSkill(ctx context.Context, jobID, skillID uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO job_skills (job_id, skill_id)
		 VALUES ($1, $2)
		 ON CONFLICT (job_id, skill_id) DO NOTHING`,
		jobID, skillID,
	)
	if err != nil {
		return fmt.Errorf("failed to link job skill: %w", err)
	}
	return nil
}

// LinkUserSkill associates a taxonomy skill with a user
func (db *DB) LinkUserSkill(ctx context.Context, userID, skillID uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO user_skills (user_id, skill_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, skill_id) DO NOTHING`,
		userID, skillID,
	)
	if err != nil {
		return fmt.Errorf("failed to link user skill: %w", err)
	}
	return nil
}

// ListSkills retrieves taxonomy skills alphabetically
func (db *DB) ListSkills(ctx context.Context) ([]Skill, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, name, category, created_at FROM skills ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list skills: %w", err)
	}
	defer rows.Close()

	var skills []Skill
	for rows.Next() {
		var s Skill
		if err := rows.Scan(&s.ID, &s.Name, &s.Category, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan skill: %w", err)
		}
		skills = append(skills, s)
	}
	return skills, nil
}
