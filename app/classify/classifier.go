package classify

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Category is a named heuristic bucket driving score weights.
type Category string

const (
	CategoryBreaking  Category = "breaking"
	CategorySecurity  Category = "security"
	CategoryEconomic  Category = "economic"
	CategoryDisaster  Category = "disaster"
	CategoryHealth    Category = "health"
	CategoryPolitical Category = "political"
	CategoryFluff     Category = "fluff"
)

// Classifier tests category membership over curated keyword sets. Matching
// is case-insensitive and requires word boundaries on both ends of a phrase,
// so a keyword "war" does not match "warfare" or "warm". Patterns are
// compiled once at construction and the classifier is immutable afterwards.
type Classifier struct {
	patterns map[Category]*regexp.Regexp
}

func NewClassifier(sets map[Category][]string) (*Classifier, error) {
	patterns := make(map[Category]*regexp.Regexp, len(sets))

	for category, phrases := range sets {
		if len(phrases) == 0 {
			continue
		}

		quoted := make([]string, 0, len(phrases))
		for _, phrase := range phrases {
			phrase = strings.TrimSpace(phrase)
			if phrase == "" {
				continue
			}
			quoted = append(quoted, regexp.QuoteMeta(phrase))
		}
		if len(quoted) == 0 {
			continue
		}

		// Longer phrases first so alternation prefers the most specific match.
		sort.Slice(quoted, func(i, j int) bool { return len(quoted[i]) > len(quoted[j]) })

		pattern, err := regexp.Compile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern for category %q: %w", category, err)
		}
		patterns[category] = pattern
	}

	return &Classifier{patterns: patterns}, nil
}

// Matches reports whether text contains any configured phrase of the given
// category. Unknown categories never match.
func (c *Classifier) Matches(text string, category Category) bool {
	pattern, ok := c.patterns[category]
	if !ok {
		return false
	}
	return pattern.MatchString(text)
}

// Categories returns the categories with at least one configured phrase.
func (c *Classifier) Categories() []Category {
	categories := make([]Category, 0, len(c.patterns))
	for category := range c.patterns {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })
	return categories
}
