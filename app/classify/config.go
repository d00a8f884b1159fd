package classify

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// KeywordConfig is the immutable keyword configuration, loaded once at
// startup. The built-in defaults can be replaced wholesale by a YAML file.
type KeywordConfig struct {
	Categories          map[Category][]string `yaml:"categories"`
	HighPrioritySources []string              `yaml:"high_priority_sources"`
}

// LoadKeywordConfig reads a keyword configuration from a YAML file.
func LoadKeywordConfig(path string) (*KeywordConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keywords file: %w", err)
	}

	var config KeywordConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse keywords YAML: %w", err)
	}

	if len(config.Categories) == 0 {
		return nil, fmt.Errorf("keywords file defines no categories")
	}

	return &config, nil
}

// DefaultKeywordConfig returns the built-in curated keyword sets and the
// high-priority source list.
func DefaultKeywordConfig() *KeywordConfig {
	return &KeywordConfig{
		Categories: map[Category][]string{
			CategoryBreaking: {
				"BREAKING", "URGENT", "CRISIS", "DEADLY", "WAR", "ATTACK", "MASSIVE",
				"EXCLUSIVE", "TARIFFS", "EMERGENCY", "EVACUATION", "COLLAPSE",
				"EXPLOSION", "SHOOTING", "HOSTAGE", "THREAT", "Trump fires", "SANCTIONS",
			},
			CategorySecurity: {
				"data breach", "hacked", "cyber attack", "compromised", "leak",
				"phishing", "ransomware", "malware", "zero-day", "DDoS", "exfiltration",
				"spyware", "nation-state attack", "APT", "backdoor", "hack confirmed",
				"credential stuffing",
			},
			CategoryEconomic: {
				"bankruptcy", "recession", "inflation", "market crash", "defaults",
				"federal reserve", "interest rates", "layoffs", "financial crisis",
				"economic downturn", "credit crunch", "debt ceiling",
			},
			CategoryDisaster: {
				"earthquake", "hurricane", "tornado", "flood", "wildfire", "tsunami",
				"volcano", "landslide", "storm surge", "blizzard", "drought", "heatwave",
			},
			CategoryHealth: {
				"pandemic", "epidemic", "virus", "outbreak", "health crisis", "quarantine",
				"CDC warning", "WHO emergency", "public health emergency", "vaccine shortage",
			},
			CategoryPolitical: {
				"Trump", "Biden", "White House", "Congress", "Senate", "House of Representatives",
				"Supreme Court", "Impeachment", "Election", "Vote", "Ballot", "Governor",
				"Legislation", "Bill", "Executive Order", "SCOTUS", "Subpoena", "Indictment",
				"Pardon", "Whistleblower", "Investigation", "DOJ", "FBI", "CIA", "Pentagon",
				"National Security", "Foreign Policy", "UN", "Purge", "NATO",
			},
			CategoryFluff: {
				"Wordle", "Must-have", "Connections", "Horoscope", "Celebrity", "BBQ",
				"Best Products", "Comparison", "Unboxing", "Review", "Ranking", "Oscars",
				"Best", "Grammys", "TikTok", "Reddit", "Social Media Reacts", "Viral Video",
				"Funniest Tweets",
			},
		},
		HighPrioritySources: []string{
			"nytimes.com", "reuters.com", "cbsnews.com", "cnbc.com", "apnews.com",
			"cnn.com", "foxnews.com", "bbc.com", "theguardian.com", "wsj.com",
			"npr.org", "aljazeera.com", "economist.com", "bloomberg.com",
			"forbes.com", "financialtimes.com", "businessinsider.com",
		},
	}
}
