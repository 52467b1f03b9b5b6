// Package recommend scores job postings against a user profile and produces
// ranked, explained recommendations.
package recommend

import (
	"sort"

	"github.com/jonathan/job-recommender/internal/db"
	"github.com/jonathan/job-recommender/internal/embedding"
	"github.com/jonathan/job-recommender/internal/skills"
)

// ScoringConfig holds the thresholds and weights of the scoring pipeline.
// These are tuning data; the defaults match long-observed behavior.
type ScoringConfig struct {
	SimilarityGate      float64 // inclusion gate on raw similarity
	CombinedGate        float64 // inclusion gate on combined score
	SimilarityFilter    float64 // stricter post-sort filter on similarity
	CombinedFilter      float64 // stricter post-sort filter on combined score
	SimilarityWeight    float64
	SkillWeight         float64
	SkillOnlyMultiplier float64 // applied to ratio when no similarity signal exists
}

// DefaultScoringConfig returns the standard thresholds and weights.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		SimilarityGate:      0.3,
		CombinedGate:        0.1,
		SimilarityFilter:    0.15,
		CombinedFilter:      0.01,
		SimilarityWeight:    0.5,
		SkillWeight:         0.5,
		SkillOnlyMultiplier: 0.8,
	}
}

// ScoredJob is a candidate posting with its scoring breakdown.
type ScoredJob struct {
	Job             db.JobPosting `json:"job"`
	SimilarityScore float64       `json:"similarity_score"`
	SkillMatchCount int           `json:"skill_match_count"`
	SkillMatchRatio float64       `json:"skill_match_ratio"`
	CombinedScore   float64       `json:"combined_score"`
	Explanation     string        `json:"explanation,omitempty"`
}

// ScoreJobs scores candidates against the user's skills and embedding, keeps
// those passing the inclusion gate and returns them sorted by combined score
// descending. A nil user embedding degrades to skill-only scoring.
func ScoreJobs(cfg ScoringConfig, userSkills []string, userEmbedding []float64, candidates []db.JobPosting) []ScoredJob {
	userSet := skills.NormalizeSet(userSkills)

	var scored []ScoredJob
	for _, job := range candidates {
		similarity := 0.0
		if userEmbedding != nil && job.DescriptionEmbedding != nil {
			similarity = embedding.CosineSimilarity(userEmbedding, job.DescriptionEmbedding)
		}

		jobSet := skills.NormalizeSet(job.RequiredSkills)
		matchCount := 0
		for key := range userSet {
			if jobSet[key] {
				matchCount++
			}
		}
		matchRatio := 0.0
		if len(jobSet) > 0 {
			matchRatio = float64(matchCount) / float64(len(jobSet))
		}

		var combined float64
		if similarity == 0 && matchRatio > 0 {
			// No embedding signal: lean on skill matching alone
			combined = matchRatio * cfg.SkillOnlyMultiplier
		} else {
			combined = similarity*cfg.SimilarityWeight + matchRatio*cfg.SkillWeight
		}

		if matchCount > 0 || similarity > cfg.SimilarityGate || combined > cfg.CombinedGate {
			scored = append(scored, ScoredJob{
				Job:             job,
				SimilarityScore: similarity,
				SkillMatchCount: matchCount,
				SkillMatchRatio: matchRatio,
				CombinedScore:   combined,
			})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].CombinedScore > scored[j].CombinedScore
	})
	return scored
}

// FilterScored applies the stricter relevance filter. When it would empty a
// non-empty candidate list, the top entries by raw similarity are kept instead
// so a user with any candidates always gets recommendations.
func FilterScored(cfg ScoringConfig, scored []ScoredJob, limit int) []ScoredJob {
	var filtered []ScoredJob
	for _, s := range scored {
		if s.SkillMatchCount > 0 || s.SimilarityScore > cfg.SimilarityFilter || s.CombinedScore > cfg.CombinedFilter {
			filtered = append(filtered, s)
		}
	}

	if len(filtered) == 0 && len(scored) > 0 {
		bySimilarity := make([]ScoredJob, len(scored))
		copy(bySimilarity, scored)
		sort.SliceStable(bySimilarity, func(i, j int) bool {
			return bySimilarity[i].SimilarityScore > bySimilarity[j].SimilarityScore
		})
		if len(bySimilarity) > limit {
			bySimilarity = bySimilarity[:limit]
		}
		filtered = bySimilarity
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CombinedScore > filtered[j].CombinedScore
	})
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered
}
