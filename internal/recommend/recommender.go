package recommend

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/job-recommender/internal/db"
	"github.com/jonathan/job-recommender/internal/llm"
)

// CandidateLimit caps the active postings fetched for scoring.
const CandidateLimit = 500

// ExplainLimit caps how many top recommendations get an LLM explanation.
const ExplainLimit = 10

// fallbackExplanation is used when the LLM call fails.
const fallbackExplanation = "Good match based on skills and job description similarity."

// Store is the persistence surface the recommender needs.
type Store interface {
	ListActiveJobCandidates(ctx context.Context, limit int) ([]db.JobPosting, error)
	UpdateUserEmbedding(ctx context.Context, userID uuid.UUID, embedding []float64) error
}

// Embedder generates profile embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Recommender produces ranked job recommendations for a user.
type Recommender struct {
	store    Store
	embedder Embedder
	llm      llm.Client // nil disables explanations
	config   ScoringConfig
}

// NewRecommender creates a Recommender with injected collaborators.
func NewRecommender(store Store, embedder Embedder, llmClient llm.Client, config ScoringConfig) *Recommender {
	return &Recommender{
		store:    store,
		embedder: embedder,
		llm:      llmClient,
		config:   config,
	}
}

// Recommend scores active postings for the user and returns up to limit
// recommendations, the top ones carrying an LLM explanation.
func (r *Recommender) Recommend(ctx context.Context, user *db.User, limit int) ([]ScoredJob, error) {
	if limit <= 0 {
		limit = 10
	}

	userEmbedding := r.resolveUserEmbedding(ctx, user)

	candidates, err := r.store.ListActiveJobCandidates(ctx, CandidateLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch job candidates: %w", err)
	}

	scored := ScoreJobs(r.config, user.Skills, userEmbedding, candidates)
	top := FilterScored(r.config, scored, limit)

	for i := range top {
		if i >= ExplainLimit {
			break
		}
		top[i].Explanation = r.explain(ctx, &top[i])
	}
	return top, nil
}

// resolveUserEmbedding returns the stored resume embedding, generating and
// persisting one from the profile when absent. Failures degrade to skill-only
// scoring; this is the only mutation in the recommendation path.
func (r *Recommender) resolveUserEmbedding(ctx context.Context, user *db.User) []float64 {
	if len(user.ResumeEmbedding) > 0 {
		return user.ResumeEmbedding
	}
	if r.embedder == nil {
		return nil
	}

	var parts []string
	if user.ResumeText != nil && *user.ResumeText != "" {
		parts = append(parts, *user.ResumeText)
	}
	if len(user.Skills) > 0 {
		parts = append(parts, "Skills: "+strings.Join(user.Skills, ", "))
	}
	if user.ExperienceYears != nil {
		parts = append(parts, fmt.Sprintf("Experience: %d years", *user.ExperienceYears))
	}
	if user.EducationLevel != nil && *user.EducationLevel != "" {
		parts = append(parts, "Education: "+*user.EducationLevel)
	}

	profileText := strings.TrimSpace(strings.Join(parts, " "))
	if profileText == "" {
		return nil
	}

	vector, err := r.embedder.Embed(ctx, profileText)
	if err != nil {
		log.Printf("[RECOMMEND] user %s embedding generation failed: %v", user.ID, err)
		return nil
	}

	if err := r.store.UpdateUserEmbedding(ctx, user.ID, vector); err != nil {
		log.Printf("[RECOMMEND] user %s embedding persist failed: %v", user.ID, err)
	}
	user.ResumeEmbedding = vector
	return vector
}

// explain asks the LLM for a short match explanation, falling back to a
// generic line on failure.
func (r *Recommender) explain(ctx context.Context, s *ScoredJob) string {
	if r.llm == nil {
		return fallbackExplanation
	}

	jobSkills := s.Job.RequiredSkills
	if len(jobSkills) > 5 {
		jobSkills = jobSkills[:5]
	}

	prompt := fmt.Sprintf(`Explain why this job matches the user:
Job: %s at %s
Required Skills: %s
Match Score: %.0f%%
Similarity: %.0f%%
Skills Match: %d/%d

Provide a brief 1-2 sentence explanation.`,
		s.Job.Title, s.Job.Company, strings.Join(jobSkills, ", "),
		s.CombinedScore*100, s.SimilarityScore*100,
		s.SkillMatchCount, len(s.Job.RequiredSkills))

	text, err := r.llm.GenerateContent(ctx, prompt, llm.TierLite)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			log.Printf("[RECOMMEND] explanation for %s failed: %v", s.Job.ID, err)
		}
		return fallbackExplanation
	}
	return strings.TrimSpace(text)
}
