// Package resume extracts structured profile data from raw resume text.
package resume

import (
	"context"
	"encoding/json"
	"log"
	"unicode/utf8"

	"github.com/jonathan/job-recommender/internal/llm"
	"github.com/jonathan/job-recommender/internal/schemas"
	"github.com/jonathan/job-recommender/internal/skills"
)

// maxPromptChars bounds how much resume text is sent to the model.
const maxPromptChars = 3000

const parsePrompt = `You are an expert resume parser. Extract structured information from resumes.
Return a JSON object with the following fields:
- full_name: string or null
- skills: array of skill names
- experience_years: integer (total years of professional experience) or null
- education_level: string (e.g., "Bachelor's", "Master's", "PhD") or null

Return ONLY valid JSON, no additional text.

Parse this resume and extract the information:

`

// ParsedResume is the structured result of parsing resume text.
type ParsedResume struct {
	FullName        *string  `json:"full_name"`
	Skills          []string `json:"skills"`
	ExperienceYears *int     `json:"experience_years"`
	EducationLevel  *string  `json:"education_level"`
}

// Parser turns resume text into a ParsedResume, preferring the LLM and
// falling back to vocabulary keyword matching.
type Parser struct {
	llm        llm.Client // nil forces keyword extraction
	vocabulary *skills.Vocabulary
}

// NewParser creates a Parser.
func NewParser(llmClient llm.Client, vocabulary *skills.Vocabulary) *Parser {
	return &Parser{llm: llmClient, vocabulary: vocabulary}
}

// Parse extracts structured data from resume text. It never fails: when the
// LLM is unavailable or returns something unusable, only skills found by
// keyword matching are reported.
func (p *Parser) Parse(ctx context.Context, text string) *ParsedResume {
	if p.llm != nil {
		if parsed := p.parseWithLLM(ctx, text); parsed != nil {
			return parsed
		}
	}
	return &ParsedResume{Skills: p.vocabulary.Extract(text)}
}

func (p *Parser) parseWithLLM(ctx context.Context, text string) *ParsedResume {
	truncated := text
	if len(truncated) > maxPromptChars {
		// Back up to a rune boundary so the prompt stays valid UTF-8
		cut := maxPromptChars
		for cut > 0 && !utf8.RuneStart(truncated[cut]) {
			cut--
		}
		truncated = truncated[:cut]
	}

	response, err := p.llm.GenerateJSON(ctx, parsePrompt+truncated, llm.TierStandard)
	if err != nil {
		log.Printf("[RESUME] LLM parse failed: %v", err)
		return nil
	}

	doc := llm.ExtractJSONObject(response)
	if doc == "" {
		log.Printf("[RESUME] no JSON object in LLM response")
		return nil
	}
	if err := schemas.ValidateResumeParse(doc); err != nil {
		log.Printf("[RESUME] LLM response failed validation: %v", err)
		return nil
	}

	var parsed ParsedResume
	if err := json.Unmarshal([]byte(doc), &parsed); err != nil {
		log.Printf("[RESUME] LLM response unmarshal failed: %v", err)
		return nil
	}
	if parsed.Skills == nil {
		parsed.Skills = []string{}
	}
	return &parsed
}
