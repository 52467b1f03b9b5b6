package skillgap

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-recommender/internal/db"
	"github.com/jonathan/job-recommender/internal/llm"
)

type fakeLLM struct {
	response string
	err      error
	prompt   string
}

func (f *fakeLLM) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.prompt = prompt
	return f.response, f.err
}

func (f *fakeLLM) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.prompt = prompt
	return f.response, f.err
}

func (f *fakeLLM) GetModel(_ llm.ModelTier) string { return "fake-model" }

func (f *fakeLLM) Close() error { return nil }

func testJob(required []string) *db.JobPosting {
	return &db.JobPosting{
		ID:             uuid.New(),
		Title:          "Backend Engineer",
		Company:        "Test Co",
		RequiredSkills: required,
	}
}

func TestAnalyzeSplitsOnNormalizedSkills(t *testing.T) {
	client := &fakeLLM{response: `{"analysis": "Solid base.", "recommendations": ["Take a k8s course"], "priority_skills": ["kubernetes"]}`}
	a := NewAnalyzer(client)

	user := &db.User{ID: uuid.New(), Skills: []string{"Node.js", "Python"}}
	result := a.Analyze(context.Background(), user, testJob([]string{"nodejs", "python", "kubernetes"}))

	assert.Equal(t, []string{"nodejs", "python"}, result.UserHasSkills)
	assert.Equal(t, []string{"kubernetes"}, result.MissingSkills)
	assert.InDelta(t, 66.66, result.SkillGapAnalysis.MatchPercentage, 0.1)
	assert.Equal(t, 2, result.SkillGapAnalysis.SkillsMatched)
	assert.Equal(t, 1, result.SkillGapAnalysis.SkillsMissing)
	assert.Equal(t, 3, result.SkillGapAnalysis.TotalRequired)
}

func TestAnalyzeParsesModelResponse(t *testing.T) {
	client := &fakeLLM{response: "```json\n" + `{"analysis": "You cover most requirements.", "recommendations": ["Learn Go", "Practice SQL"], "priority_skills": ["go"]}` + "\n```"}
	a := NewAnalyzer(client)

	user := &db.User{ID: uuid.New(), Skills: []string{"python"}}
	result := a.Analyze(context.Background(), user, testJob([]string{"python", "go", "sql"}))

	assert.Equal(t, "You cover most requirements.", result.SkillGapAnalysis.Analysis)
	assert.Equal(t, []string{"Learn Go", "Practice SQL"}, result.Recommendations)
	assert.Equal(t, []string{"go"}, result.SkillGapAnalysis.PrioritySkills)
	assert.Contains(t, client.prompt, "Match Percentage: 33.3%")
}

func TestAnalyzeLLMFailureFallsBack(t *testing.T) {
	a := NewAnalyzer(&fakeLLM{err: errors.New("quota exceeded")})

	user := &db.User{ID: uuid.New(), Skills: []string{"python"}}
	result := a.Analyze(context.Background(), user, testJob([]string{"python", "go", "kubernetes"}))

	assert.Contains(t, result.SkillGapAnalysis.Analysis, "Match: 33.3%")
	assert.Contains(t, result.SkillGapAnalysis.Analysis, "go, kubernetes")
	assert.Equal(t, []string{"go", "kubernetes"}, result.Recommendations)
}

func TestAnalyzeNonJSONResponseKeptAsNarrative(t *testing.T) {
	a := NewAnalyzer(&fakeLLM{response: "You should focus on cloud skills."})

	user := &db.User{ID: uuid.New(), Skills: []string{"python"}}
	result := a.Analyze(context.Background(), user, testJob([]string{"python", "aws"}))

	assert.Equal(t, "You should focus on cloud skills.", result.SkillGapAnalysis.Analysis)
	assert.Equal(t, []string{"aws"}, result.Recommendations)
}

func TestAnalyzeNoRequiredSkills(t *testing.T) {
	a := NewAnalyzer(nil)

	user := &db.User{ID: uuid.New(), Skills: []string{"python"}}
	result := a.Analyze(context.Background(), user, testJob(nil))

	require.NotNil(t, result)
	assert.Zero(t, result.SkillGapAnalysis.MatchPercentage)
	assert.Empty(t, result.UserHasSkills)
	assert.Empty(t, result.MissingSkills)
}
