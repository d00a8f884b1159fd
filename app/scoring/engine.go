package scoring

import (
	"net/url"
	"strings"

	"github.com/lgavrilov/newspulse/app/classify"
)

const (
	pointsFactor   = 0.2
	pointsCap      = 20.0
	commentsFactor = 0.1
	commentsCap    = 10.0

	highPriorityBonus = 8.0
	comboFactor       = 5.0
	fluffCeiling      = 10.0

	// Age penalty accrues 2 points per 12 hours; political items decay four
	// times slower.
	agePenaltyPerHalfDay = 2.0
	politicalDecayFactor = 0.25
)

var categoryWeights = []struct {
	Category classify.Category
	Weight   float64
}{
	{classify.CategoryBreaking, 20},
	{classify.CategorySecurity, 10},
	{classify.CategoryEconomic, 7},
	{classify.CategoryDisaster, 15},
	{classify.CategoryHealth, 5},
	{classify.CategoryPolitical, 13},
	{classify.CategoryFluff, -10},
}

// comboCategories is the subset whose co-occurrence earns the combo bonus.
var comboCategories = []classify.Category{
	classify.CategoryBreaking,
	classify.CategorySecurity,
	classify.CategoryEconomic,
	classify.CategoryPolitical,
}

// Input carries everything the engine reads. Points and Comments are nil
// when the feed supplied no engagement data.
type Input struct {
	Title    string
	URL      string
	AgeHours float64
	Points   *int
	Comments *int
}

// Engine computes item relevance scores from keyword classification,
// engagement signals, source reputation and age. Scoring is deterministic
// and has no side effects.
type Engine struct {
	classifier        *classify.Classifier
	highPriorityHosts []string
}

func NewEngine(classifier *classify.Classifier, highPriorityHosts []string) *Engine {
	hosts := make([]string, 0, len(highPriorityHosts))
	for _, host := range highPriorityHosts {
		host = strings.ToLower(strings.TrimSpace(host))
		if host != "" {
			hosts = append(hosts, host)
		}
	}
	return &Engine{
		classifier:        classifier,
		highPriorityHosts: hosts,
	}
}

// Score evaluates the weighted heuristics in a fixed order. The fluff
// ceiling is applied after every additive and subtractive step but before
// the final floor at zero; no other ordering reproduces it correctly.
func (e *Engine) Score(input Input) float64 {
	score := 0.0

	if input.Points != nil {
		score += min(float64(*input.Points)*pointsFactor, pointsCap)
	}
	if input.Comments != nil {
		score += min(float64(*input.Comments)*commentsFactor, commentsCap)
	}

	matched := make(map[classify.Category]bool, len(categoryWeights))
	for _, cw := range categoryWeights {
		if e.classifier.Matches(input.Title, cw.Category) {
			matched[cw.Category] = true
			score += cw.Weight
		}
	}

	comboCount := 0
	for _, category := range comboCategories {
		if matched[category] {
			comboCount++
		}
	}
	if comboCount > 1 {
		score += float64(comboCount) * comboFactor
	}

	if e.isHighPriority(input.URL) {
		score += highPriorityBonus
	}

	penalty := (input.AgeHours / 12) * agePenaltyPerHalfDay
	if matched[classify.CategoryPolitical] {
		penalty *= politicalDecayFactor
	}
	score -= penalty

	if matched[classify.CategoryFluff] && score > fluffCeiling {
		score = fluffCeiling
	}

	return max(0, score)
}

// isHighPriority reports whether the item URL's host is in the curated
// high-priority source list. Subdomains of a listed host count.
func (e *Engine) isHighPriority(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return false
	}

	for _, candidate := range e.highPriorityHosts {
		if host == candidate || strings.HasSuffix(host, "."+candidate) {
			return true
		}
	}
	return false
}
