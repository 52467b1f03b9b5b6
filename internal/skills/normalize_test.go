package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_Aliases(t *testing.T) {
	assert.Equal(t, "nodejs", Normalize("Node.js"))
	assert.Equal(t, "nodejs", Normalize("node-js"))
	assert.Equal(t, "cpp", Normalize("C++"))
	assert.Equal(t, "ml", Normalize("Machine Learning"))
	assert.Equal(t, "js", Normalize("JavaScript"))
	assert.Equal(t, "scikitlearn", Normalize("scikit-learn"))
}

func TestNormalize_PassThrough(t *testing.T) {
	assert.Equal(t, "python", Normalize("Python"))
	assert.Equal(t, "aws", Normalize("  AWS  "))
	assert.Equal(t, "react native", Normalize("React_Native"))
}

func TestNormalize_Empty(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"Node.js", "C++", "Machine Learning", "Python", "CI-CD", "data_science"}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalizing %q twice diverged", in)
	}
}

func TestNormalizeSet_DropsEmpties(t *testing.T) {
	set := NormalizeSet([]string{"Python", "", "python", "AWS"})
	assert.Len(t, set, 2)
	assert.True(t, set["python"])
	assert.True(t, set["aws"])
}

func TestExtract_FindsAndFormatsSkills(t *testing.T) {
	vocab := DefaultVocabulary()
	text := "We need Python and node.js experience, plus CI/CD pipelines and some AI work."

	found := vocab.Extract(text)

	assert.Contains(t, found, "Python")
	assert.Contains(t, found, "Node.js")
	assert.Contains(t, found, "CI/CD")
	assert.Contains(t, found, "AI")
}

func TestExtract_Deduplicates(t *testing.T) {
	vocab := DefaultVocabulary()
	// "machine learning" and "ml" both map to the same display name.
	found := vocab.Extract("machine learning, ml, more machine learning")

	count := 0
	for _, s := range found {
		if s == "Machine Learning" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestExtract_EmptyText(t *testing.T) {
	assert.Empty(t, DefaultVocabulary().Extract(""))
}
