// Package config provides environment-driven configuration for the server and CLI.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// AppConfig holds application-level settings loaded from the environment.
type AppConfig struct {
	// Server
	Port           string
	AllowedOrigins string

	// Storage
	DatabaseURL string

	// LLM
	GeminiAPIKey string

	// Embeddings
	EmbeddingAPIURL string
	EmbeddingAPIKey string
	EmbeddingModel  string

	// Scraping
	ScrapeMinDelay time.Duration

	// Scoring thresholds and weights (tuning data, not code)
	SimilarityGate      float64 // inclusion gate on raw similarity
	CombinedGate        float64 // inclusion gate on combined score
	SimilarityFilter    float64 // stricter post-sort filter on similarity
	CombinedFilter      float64 // stricter post-sort filter on combined score
	SimilarityWeight    float64
	SkillWeight         float64
	SkillOnlyMultiplier float64 // applied to ratio when no embedding similarity exists

	// Skill vocabulary override (optional JSON file)
	SkillVocabularyPath string
}

// NewAppConfig loads application configuration from environment variables.
// DATABASE_URL is required; everything else has a usable default.
func NewAppConfig() (*AppConfig, error) {
	cfg := &AppConfig{
		Port:                envOr("PORT", "8080"),
		AllowedOrigins:      envOr("ALLOWED_ORIGINS", "*"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		EmbeddingAPIURL:     os.Getenv("EMBEDDING_API_URL"),
		EmbeddingAPIKey:     os.Getenv("EMBEDDING_API_KEY"),
		EmbeddingModel:      envOr("EMBEDDING_MODEL", "text-embedding-3-small"),
		SkillVocabularyPath: os.Getenv("SKILL_VOCABULARY_PATH"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set")
	}

	delaySecs, err := envFloat("SCRAPE_MIN_DELAY_SECONDS", 2.0)
	if err != nil {
		return nil, err
	}
	cfg.ScrapeMinDelay = time.Duration(delaySecs * float64(time.Second))

	for _, f := range []struct {
		dst *float64
		key string
		def float64
	}{
		{&cfg.SimilarityGate, "SCORE_SIMILARITY_GATE", 0.3},
		{&cfg.CombinedGate, "SCORE_COMBINED_GATE", 0.1},
		{&cfg.SimilarityFilter, "SCORE_SIMILARITY_FILTER", 0.15},
		{&cfg.CombinedFilter, "SCORE_COMBINED_FILTER", 0.01},
		{&cfg.SimilarityWeight, "SCORE_SIMILARITY_WEIGHT", 0.5},
		{&cfg.SkillWeight, "SCORE_SKILL_WEIGHT", 0.5},
		{&cfg.SkillOnlyMultiplier, "SCORE_SKILL_ONLY_MULTIPLIER", 0.8},
	} {
		v, err := envFloat(f.key, f.def)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// normalize validates the configuration.
func (c *AppConfig) normalize() error {
	if c.ScrapeMinDelay < 0 {
		return fmt.Errorf("SCRAPE_MIN_DELAY_SECONDS must be non-negative")
	}
	if c.SimilarityWeight < 0 || c.SimilarityWeight > 1 {
		return fmt.Errorf("SCORE_SIMILARITY_WEIGHT out of range: %v (must be 0-1)", c.SimilarityWeight)
	}
	if c.SkillWeight < 0 || c.SkillWeight > 1 {
		return fmt.Errorf("SCORE_SKILL_WEIGHT out of range: %v (must be 0-1)", c.SkillWeight)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return v, nil
}
