package skills

import (
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Vocabulary is the term list and display-name table used for skill
// extraction. The defaults are compiled in; a JSON file can override them so
// the heuristics are tunable without code changes.
type Vocabulary struct {
	Terms        []string          `json:"terms"`
	DisplayNames map[string]string `json:"display_names"`
}

// defaultTerms is the extraction vocabulary, matched case-insensitively as
// substrings of the job description.
var defaultTerms = []string{
	// Programming languages
	"python", "javascript", "java", "typescript", "c++", "c#", "go", "rust",
	"php", "ruby", "swift", "kotlin", "scala", "r", "matlab", "perl",
	// Web frameworks
	"react", "vue", "angular", "node.js", "nodejs", "express", "expressjs",
	"django", "flask", "fastapi", "spring", "asp.net", "laravel", "rails",
	// Databases
	"sql", "mysql", "postgresql", "mongodb", "redis", "cassandra", "elasticsearch",
	"dynamodb", "oracle", "sqlite", "mariadb",
	// Cloud & DevOps
	"aws", "azure", "gcp", "docker", "kubernetes", "jenkins", "terraform",
	"ansible", "ci/cd", "github actions", "gitlab",
	// AI/ML
	"machine learning", "ml", "artificial intelligence", "ai", "deep learning",
	"neural networks", "tensorflow", "pytorch", "keras", "scikit-learn",
	"pandas", "numpy", "nlp", "natural language processing", "computer vision",
	"llm", "large language models", "generative ai", "gpt", "transformer",
	"prompt engineering", "rag", "retrieval augmented generation", "embeddings",
	// Blockchain
	"blockchain", "ethereum", "solidity", "smart contracts", "web3", "defi",
	// Data engineering
	"data science", "data analysis", "data engineering", "big data", "spark",
	"hadoop", "kafka", "airflow",
	// Other tools
	"git", "github", "graphql", "rest api", "microservices", "agile", "scrum",
}

// defaultDisplayNames fixes the capitalization of terms where plain title
// casing is wrong or ambiguous.
var defaultDisplayNames = map[string]string{
	"node.js":                       "Node.js",
	"nodejs":                        "Node.js",
	"c++":                           "C++",
	"c#":                            "C#",
	"ai":                            "AI",
	"artificial intelligence":       "AI",
	"ml":                            "Machine Learning",
	"machine learning":              "Machine Learning",
	"llm":                           "LLM",
	"large language models":         "LLM",
	"rag":                           "RAG",
	"retrieval augmented generation": "RAG",
	"ci/cd":                         "CI/CD",
	"scikit-learn":                  "Scikit-Learn",
}

// DefaultVocabulary returns the compiled-in vocabulary.
func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{
		Terms:        defaultTerms,
		DisplayNames: defaultDisplayNames,
	}
}

// LoadVocabulary reads a vocabulary override from a JSON file. Missing
// display_names fall back to the defaults so a file can override only the
// term list.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file %s: %w", path, err)
	}

	var vocab Vocabulary
	if err := json.Unmarshal(data, &vocab); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary JSON: %w", err)
	}

	if len(vocab.Terms) == 0 {
		vocab.Terms = defaultTerms
	}
	if vocab.DisplayNames == nil {
		vocab.DisplayNames = defaultDisplayNames
	}
	return &vocab, nil
}

// displayName returns the presentation form of a vocabulary term.
func (v *Vocabulary) displayName(term string) string {
	if name, ok := v.DisplayNames[term]; ok {
		return name
	}
	return cases.Title(language.English).String(term)
}
