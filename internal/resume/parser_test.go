package resume

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-recommender/internal/llm"
	"github.com/jonathan/job-recommender/internal/skills"
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

const sampleResume = `Jane Doe
Senior Software Engineer with 6 years of experience.
Built services in Python and Go, deployed with Docker on AWS.
M.S. Computer Science.`

func TestParseWithLLM(t *testing.T) {
	client := &fakeLLM{response: `{
		"full_name": "Jane Doe",
		"skills": ["Python", "Go", "Docker", "AWS"],
		"experience_years": 6,
		"education_level": "Master's"
	}`}
	p := NewParser(client, skills.DefaultVocabulary())

	parsed := p.Parse(context.Background(), sampleResume)
	require.NotNil(t, parsed)
	require.NotNil(t, parsed.FullName)
	assert.Equal(t, "Jane Doe", *parsed.FullName)
	assert.Equal(t, []string{"Python", "Go", "Docker", "AWS"}, parsed.Skills)
	require.NotNil(t, parsed.ExperienceYears)
	assert.Equal(t, 6, *parsed.ExperienceYears)
	require.NotNil(t, parsed.EducationLevel)
	assert.Equal(t, "Master's", *parsed.EducationLevel)
}

func TestParseStripsMarkdownFence(t *testing.T) {
	client := &fakeLLM{response: "```json\n" + `{"full_name": null, "skills": ["Python"], "experience_years": null, "education_level": null}` + "\n```"}
	p := NewParser(client, skills.DefaultVocabulary())

	parsed := p.Parse(context.Background(), sampleResume)
	assert.Nil(t, parsed.FullName)
	assert.Equal(t, []string{"Python"}, parsed.Skills)
}

func TestParseLLMFailureFallsBackToKeywords(t *testing.T) {
	p := NewParser(&fakeLLM{err: errors.New("quota exceeded")}, skills.DefaultVocabulary())

	parsed := p.Parse(context.Background(), sampleResume)
	require.NotNil(t, parsed)
	assert.Nil(t, parsed.FullName)
	assert.Nil(t, parsed.ExperienceYears)
	assert.Contains(t, parsed.Skills, "Python")
	assert.Contains(t, parsed.Skills, "Docker")
	assert.Contains(t, parsed.Skills, "Aws")
}

func TestParseInvalidJSONFallsBack(t *testing.T) {
	p := NewParser(&fakeLLM{response: "I could not parse this resume."}, skills.DefaultVocabulary())

	parsed := p.Parse(context.Background(), sampleResume)
	require.NotNil(t, parsed)
	assert.Contains(t, parsed.Skills, "Python")
}

func TestParseSchemaViolationFallsBack(t *testing.T) {
	p := NewParser(&fakeLLM{response: `{"full_name": "Jane", "skills": "Python"}`}, skills.DefaultVocabulary())

	parsed := p.Parse(context.Background(), sampleResume)
	require.NotNil(t, parsed)
	assert.Nil(t, parsed.FullName)
	assert.Contains(t, parsed.Skills, "Python")
}

func TestParseNilLLMUsesKeywords(t *testing.T) {
	p := NewParser(nil, skills.DefaultVocabulary())

	parsed := p.Parse(context.Background(), sampleResume)
	assert.Contains(t, parsed.Skills, "Go")
	assert.Contains(t, parsed.Skills, "Python")
}

func TestParseTruncatesPromptOnRuneBoundary(t *testing.T) {
	// A two-byte rune straddles the 3000-byte prompt cap
	client := &fakeLLM{response: `{"full_name": null, "skills": [], "experience_years": null, "education_level": null}`}
	p := NewParser(client, skills.DefaultVocabulary())

	text := strings.Repeat("a", 2999) + "é" + strings.Repeat("b", 100)
	p.Parse(context.Background(), text)

	require.NotEmpty(t, client.prompt)
	assert.True(t, utf8.ValidString(client.prompt))
	assert.True(t, strings.HasSuffix(client.prompt, strings.Repeat("a", 2999)))
}
