// Package skillgap compares a user's skills against a job's requirements and
// produces an LLM-backed gap analysis with learning recommendations.
package skillgap

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/job-recommender/internal/db"
	"github.com/jonathan/job-recommender/internal/llm"
	"github.com/jonathan/job-recommender/internal/schemas"
	"github.com/jonathan/job-recommender/internal/skills"
)

// Summary carries the numeric breakdown alongside the generated analysis.
type Summary struct {
	MatchPercentage float64  `json:"match_percentage"`
	SkillsMatched   int      `json:"skills_matched"`
	SkillsMissing   int      `json:"skills_missing"`
	TotalRequired   int      `json:"total_required"`
	Analysis        string   `json:"analysis"`
	PrioritySkills  []string `json:"priority_skills"`
}

// Analysis is the full skill gap report for one user and one posting.
type Analysis struct {
	JobID             uuid.UUID `json:"job_id"`
	JobTitle          string    `json:"job_title"`
	JobCompany        string    `json:"job_company"`
	UserSkills        []string  `json:"user_skills"`
	JobRequiredSkills []string  `json:"job_required_skills"`
	UserHasSkills     []string  `json:"user_has_skills"`
	MissingSkills     []string  `json:"missing_skills"`
	SkillGapAnalysis  Summary   `json:"skill_gap_analysis"`
	Recommendations   []string  `json:"recommendations"`
}

// gapResponse is the JSON shape expected back from the model.
type gapResponse struct {
	Analysis        string   `json:"analysis"`
	Recommendations []string `json:"recommendations"`
	PrioritySkills  []string `json:"priority_skills"`
}

// Analyzer generates skill gap analyses.
type Analyzer struct {
	llm llm.Client // nil disables the generated narrative
}

// NewAnalyzer creates an Analyzer backed by the given LLM client.
func NewAnalyzer(llmClient llm.Client) *Analyzer {
	return &Analyzer{llm: llmClient}
}

// Analyze splits the job's required skills into those the user has and those
// missing, then asks the LLM for a narrative and recommendations. LLM or
// parse failures degrade to a numeric summary; the split itself never fails.
func (a *Analyzer) Analyze(ctx context.Context, user *db.User, job *db.JobPosting) *Analysis {
	userSet := skills.NormalizeSet(user.Skills)

	// Membership is decided on normalized keys so "Node.js" matches "nodejs",
	// but the report keeps the job's original spelling.
	var has, missing []string
	for _, skill := range job.RequiredSkills {
		if userSet[skills.Normalize(skill)] {
			has = append(has, skill)
		} else {
			missing = append(missing, skill)
		}
	}

	matchPct := 0.0
	if len(job.RequiredSkills) > 0 {
		matchPct = float64(len(has)) / float64(len(job.RequiredSkills)) * 100
	}

	analysisText, recommendations, priority := a.generate(ctx, user.Skills, job.RequiredSkills, has, missing, matchPct)

	return &Analysis{
		JobID:             job.ID,
		JobTitle:          job.Title,
		JobCompany:        job.Company,
		UserSkills:        user.Skills,
		JobRequiredSkills: job.RequiredSkills,
		UserHasSkills:     has,
		MissingSkills:     missing,
		SkillGapAnalysis: Summary{
			MatchPercentage: matchPct,
			SkillsMatched:   len(has),
			SkillsMissing:   len(missing),
			TotalRequired:   len(job.RequiredSkills),
			Analysis:        analysisText,
			PrioritySkills:  priority,
		},
		Recommendations: recommendations,
	}
}

func (a *Analyzer) generate(ctx context.Context, userSkills, required, has, missing []string, matchPct float64) (string, []string, []string) {
	fallbackText := fmt.Sprintf("Match: %.1f%%. Missing skills: %s", matchPct, strings.Join(head(missing, 10), ", "))
	fallbackRecs := head(missing, 5)

	if a.llm == nil {
		return fallbackText, fallbackRecs, fallbackRecs
	}

	prompt := fmt.Sprintf(`Analyze the skill gap for a job application:

User's Current Skills: %s
Job Required Skills: %s
Skills User Has: %s
Missing Skills: %s
Match Percentage: %.1f%%

Provide:
1. A brief analysis of the skill gap
2. Top 5 actionable recommendations to bridge the gap
3. Priority skills to learn first

Format as JSON with keys: analysis, recommendations (array), priority_skills (array)`,
		strings.Join(head(userSkills, 20), ", "),
		strings.Join(head(required, 20), ", "),
		strings.Join(head(has, 20), ", "),
		strings.Join(head(missing, 20), ", "),
		matchPct)

	response, err := a.llm.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		log.Printf("[SKILLGAP] analysis generation failed: %v", err)
		return fallbackText, fallbackRecs, fallbackRecs
	}

	doc := llm.ExtractJSONObject(response)
	if doc == "" || schemas.ValidateSkillGap(doc) != nil {
		// Keep whatever the model said as the narrative
		return strings.TrimSpace(response), fallbackRecs, fallbackRecs
	}

	var parsed gapResponse
	if err := json.Unmarshal([]byte(doc), &parsed); err != nil {
		return strings.TrimSpace(response), fallbackRecs, fallbackRecs
	}

	recommendations := parsed.Recommendations
	if recommendations == nil {
		recommendations = []string{}
	}
	priority := parsed.PrioritySkills
	if len(priority) == 0 {
		priority = fallbackRecs
	}
	return parsed.Analysis, recommendations, head(priority, 5)
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
