package skills

import (
	"sort"
	"strings"
)

// Extract scans free text for vocabulary terms and returns their display
// names, deduplicated and sorted. Matching is case-insensitive substring
// matching, the same heuristic the scrapers feed job descriptions through.
func (v *Vocabulary) Extract(text string) []string {
	if text == "" {
		return nil
	}

	textLower := strings.ToLower(text)
	seen := make(map[string]bool)
	var found []string

	for _, term := range v.Terms {
		if !strings.Contains(textLower, term) {
			continue
		}
		name := v.displayName(term)
		if !seen[name] {
			seen[name] = true
			found = append(found, name)
		}
	}

	sort.Strings(found)
	return found
}
