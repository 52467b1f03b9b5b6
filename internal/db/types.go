package db

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// User represents a registered user with profile and resume data
type User struct {
	ID                  uuid.UUID   `json:"id"`
	Email               string      `json:"email"`
	PasswordHash        string      `json:"-" db:"password_hash"` // Never serialize to JSON
	FullName            string      `json:"full_name"`
	ResumeText          *string     `json:"resume_text,omitempty"`
	ResumeEmbedding     []float64   `json:"-"`
	Skills              StringArray `json:"skills"` // JSONB array
	ExperienceYears     *int        `json:"experience_years,omitempty"`
	EducationLevel      *string     `json:"education_level,omitempty"`
	PreferredLocations  StringArray `json:"preferred_locations"`
	PreferredJobTypes   StringArray `json:"preferred_job_types"`
	OnboardingCompleted bool        `json:"onboarding_completed"`
	IsAdmin             bool        `json:"is_admin"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
	LastLogin           *time.Time  `json:"last_login,omitempty"`
}

// JobPosting represents a scraped and normalized job posting
type JobPosting struct {
	ID                   uuid.UUID      `json:"id"`
	Title                string         `json:"title"`
	Company              string         `json:"company"`
	Location             *string        `json:"location,omitempty"`
	Description          string         `json:"description"`
	JobType              *string        `json:"job_type,omitempty"`
	ExperienceLevel      *string        `json:"experience_level,omitempty"`
	SalaryMin            *float64       `json:"salary_min,omitempty"`
	SalaryMax            *float64       `json:"salary_max,omitempty"`
	SalaryCurrency       string         `json:"salary_currency"`
	RequiredSkills       StringArray    `json:"required_skills"` // JSONB array
	Source               string         `json:"source"`
	SourceURL            string         `json:"source_url"`
	PostedDate           *time.Time     `json:"posted_date,omitempty"`
	ApplicationURL       *string        `json:"application_url,omitempty"`
	DescriptionEmbedding []float64      `json:"-"`
	TitleEmbedding       []float64      `json:"-"`
	IsActive             bool           `json:"is_active"`
	IsVerified           bool           `json:"is_verified"`
	Metadata             map[string]any `json:"metadata,omitempty"` // JSONB
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// SavedJob links a user to a job posting they bookmarked or applied to
type SavedJob struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	JobID     uuid.UUID `json:"job_id"`
	Status    string    `json:"status"` // saved, applied, rejected
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Job       *JobPosting `json:"job,omitempty"`
}

// Conversation is a chat thread between a user and the career advisor
type Conversation struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	Title     string         `json:"title"`
	Context   map[string]any `json:"context,omitempty"` // JSONB blob
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Message is a single role-tagged message within a conversation
type Message struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	Role           string    `json:"role"` // user or assistant
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// Skill is a taxonomy entry maintained at ingest time
type Skill struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"` // normalized key
	Category  *string   `json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// StringArray handles JSONB string arrays
type StringArray []string

// Scan implements the Scanner interface for StringArray
func (a *StringArray) Scan(src interface{}) error {
	if src == nil {
		*a = []string{}
		return nil
	}
	switch source := src.(type) {
	case []byte:
		return json.Unmarshal(source, a)
	case string:
		return json.Unmarshal([]byte(source), a)
	default:
		return errors.New("unsupported source type for StringArray")
	}
}

// Value implements the Valuer interface for StringArray
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a)
}
