package types

import "github.com/google/uuid"

// UpdateProfileRequest carries a partial profile update. Nil fields are left unchanged.
type UpdateProfileRequest struct {
	FullName            *string  `json:"full_name,omitempty" validate:"omitempty,min=1"`
	Skills              []string `json:"skills,omitempty"`
	ExperienceYears     *int     `json:"experience_years,omitempty" validate:"omitempty,gte=0,lte=60"`
	EducationLevel      *string  `json:"education_level,omitempty"`
	PreferredLocations  []string `json:"preferred_locations,omitempty"`
	PreferredJobTypes   []string `json:"preferred_job_types,omitempty"`
	OnboardingCompleted *bool    `json:"onboarding_completed,omitempty"`
}

// UploadResumeRequest carries plain resume text for parsing.
type UploadResumeRequest struct {
	Text string `json:"text" validate:"required,min=1"`
}

// ChatMessageRequest is a single user message to the career advisor.
// ConversationID is optional; omitted means start a new conversation.
type ChatMessageRequest struct {
	Message        string     `json:"message" validate:"required,min=1"`
	ConversationID *uuid.UUID `json:"conversation_id,omitempty"`
}

// SaveJobRequest carries optional metadata when saving a job.
type SaveJobRequest struct {
	Status string `json:"status,omitempty" validate:"omitempty,oneof=saved applied rejected"`
	Notes  string `json:"notes,omitempty"`
}
