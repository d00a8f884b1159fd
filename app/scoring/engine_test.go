package scoring

import (
	"math"
	"testing"

	"github.com/lgavrilov/newspulse/app/classify"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	config := classify.DefaultKeywordConfig()
	classifier, err := classify.NewClassifier(config.Categories)
	if err != nil {
		t.Fatalf("Expected no error building classifier, got: %v", err)
	}
	return NewEngine(classifier, config.HighPrioritySources)
}

func intPtr(v int) *int { return &v }

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func TestScoreComboBonus(t *testing.T) {
	engine := newTestEngine(t)

	// breaking (+20) and economic (+7), combo count 2 (+10), high-priority
	// source (+8), age penalty (1/12)*2 without political discount.
	score := engine.Score(Input{
		Title:    "BREAKING: Market Crash Triggers Recession Fears",
		URL:      "https://www.reuters.com/markets/crash",
		AgeHours: 1,
	})

	expected := 20 + 7 + 10 + 8 - (1.0/12)*2
	if !approxEqual(score, expected) {
		t.Errorf("Expected score ~%.4f, got %.4f", expected, score)
	}
}

func TestScoreFluffCeiling(t *testing.T) {
	engine := newTestEngine(t)

	// Fluff caps the total at 10 even when other bonuses pile up.
	score := engine.Score(Input{
		Title:    "BREAKING: Celebrity Review of the Market Crash",
		URL:      "https://www.reuters.com/entertainment",
		AgeHours: 0,
		Points:   intPtr(500),
	})

	if score > 10 {
		t.Errorf("Fluff-matching title must score <= 10, got %.4f", score)
	}
}

func TestScoreFluffFlooredAtZero(t *testing.T) {
	engine := newTestEngine(t)

	score := engine.Score(Input{
		Title:    "Wordle Hints for Today",
		URL:      "https://example.com/games/wordle",
		AgeHours: 0,
	})

	if score != 0 {
		t.Errorf("Expected fluff-only title to floor at 0, got %.4f", score)
	}
}

func TestScoreNeverNegative(t *testing.T) {
	engine := newTestEngine(t)

	score := engine.Score(Input{
		Title:    "Quiet day in the village",
		URL:      "https://example.com/local",
		AgeHours: 300,
	})

	if score < 0 {
		t.Errorf("Score must be clamped at zero, got %.4f", score)
	}
}

func TestScoreEngagementCaps(t *testing.T) {
	engine := newTestEngine(t)

	base := Input{
		Title:    "Quiet day in the village",
		URL:      "https://example.com/local",
		AgeHours: 0,
	}

	withPoints := base
	withPoints.Points = intPtr(1000)
	if score := engine.Score(withPoints); !approxEqual(score, 20) {
		t.Errorf("Expected points bonus capped at 20, got %.4f", score)
	}

	withComments := base
	withComments.Comments = intPtr(1000)
	if score := engine.Score(withComments); !approxEqual(score, 10) {
		t.Errorf("Expected comments bonus capped at 10, got %.4f", score)
	}

	small := base
	small.Points = intPtr(10)
	small.Comments = intPtr(10)
	if score := engine.Score(small); !approxEqual(score, 10*0.2+10*0.1) {
		t.Errorf("Expected uncapped engagement bonus of 3, got %.4f", score)
	}
}

func TestScoreMissingEngagementContributesNothing(t *testing.T) {
	engine := newTestEngine(t)

	input := Input{
		Title:    "Quiet day in the village",
		URL:      "https://example.com/local",
		AgeHours: 0,
	}

	if score := engine.Score(input); score != 0 {
		t.Errorf("Expected 0 without engagement data, got %.4f", score)
	}
}

func TestScorePoliticalDecayDiscount(t *testing.T) {
	engine := newTestEngine(t)

	// political (+13), age penalty (24/12)*2 = 4 reduced to 1 by the 0.25
	// political discount.
	score := engine.Score(Input{
		Title:    "Congress Passes New Spending Measure",
		URL:      "https://example.com/politics",
		AgeHours: 24,
	})

	expected := 13.0 - 4.0*0.25
	if !approxEqual(score, expected) {
		t.Errorf("Expected score ~%.4f, got %.4f", expected, score)
	}
}

func TestScoreAgePenaltyWithoutDiscount(t *testing.T) {
	engine := newTestEngine(t)

	// disaster (+15) with full age penalty (24/12)*2 = 4.
	score := engine.Score(Input{
		Title:    "Earthquake Shakes Coastal Towns",
		URL:      "https://example.com/world",
		AgeHours: 24,
	})

	if !approxEqual(score, 15-4) {
		t.Errorf("Expected score ~11, got %.4f", score)
	}
}

func TestIsHighPriority(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		url  string
		want bool
	}{
		{"https://reuters.com/a", true},
		{"https://www.reuters.com/a", true},
		{"https://feeds.bbc.com/rss", true},
		{"https://notreuters.com/a", false},
		{"https://reuters.com.evil.example/a", false},
		{"://bad-url", false},
	}

	for _, tt := range tests {
		if got := engine.isHighPriority(tt.url); got != tt.want {
			t.Errorf("isHighPriority(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestScoreNoComboForSingleCategory(t *testing.T) {
	engine := newTestEngine(t)

	// economic only: no combo bonus.
	score := engine.Score(Input{
		Title:    "Inflation Holds Steady",
		URL:      "https://example.com/markets",
		AgeHours: 0,
	})

	if !approxEqual(score, 7) {
		t.Errorf("Expected score ~7 for a single category, got %.4f", score)
	}
}
