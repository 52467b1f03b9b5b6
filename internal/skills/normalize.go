// Package skills provides skill-name normalization and vocabulary-based
// skill extraction used by scoring, scraping and gap analysis.
package skills

import "strings"

// skillAliases maps cleaned-up skill variants to a single canonical key.
// Keys are the result of the basic cleanup (lowercase, trimmed, - and _
// replaced with space, dots removed), so "node.js" arrives here as "nodejs".
var skillAliases = map[string]string{
	"nodejs":                  "nodejs",
	"node js":                 "nodejs",
	"machine learning":        "ml",
	"artificial intelligence": "ai",
	"ai":                      "ai",
	"data science":            "datascience",
	"datascience":             "datascience",
	"javascript":              "js",
	"js":                      "js",
	"typescript":              "ts",
	"ts":                      "ts",
	"c++":                     "cpp",
	"cplusplus":               "cpp",
	"cpp":                     "cpp",
	"expressjs":               "express",
	"express js":              "express",
	"express":                 "express",
	"fastapi":                 "fastapi",
	"fast api":                "fastapi",
	"scikit learn":            "scikitlearn",
	"scikitlearn":             "scikitlearn",
	"llm models":              "llm",
	"llm":                     "llm",
	"deep learning":           "deeplearning",
	"deeplearning":            "deeplearning",
	"prompt engineering":      "promptengineering",
	"promptengineering":       "promptengineering",
}

// Normalize canonicalizes a free-text skill string into a comparable key.
// Lowercase, trimmed, "-" and "_" become spaces, dots are removed, then the
// alias table collapses known variants. Unmapped strings pass through after
// the cleanup. Empty input yields the empty string. Normalize is idempotent.
func Normalize(skill string) string {
	if skill == "" {
		return ""
	}

	normalized := strings.ToLower(strings.TrimSpace(skill))
	normalized = strings.ReplaceAll(normalized, "-", " ")
	normalized = strings.ReplaceAll(normalized, "_", " ")
	normalized = strings.ReplaceAll(normalized, ".", "")

	if canonical, ok := skillAliases[normalized]; ok {
		return canonical
	}
	return normalized
}

// NormalizeSet normalizes a list of raw skills into a set of canonical keys,
// dropping empties.
func NormalizeSet(raw []string) map[string]bool {
	set := make(map[string]bool, len(raw))
	for _, s := range raw {
		if key := Normalize(s); key != "" {
			set[key] = true
		}
	}
	return set
}
