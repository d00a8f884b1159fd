package sources

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Definition describes one feed source from the sources file.
type Definition struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Kind     string `yaml:"kind"`
	Category string `yaml:"category"`
	Enabled  *bool  `yaml:"enabled"`
}

type sourcesFile struct {
	Sources []Definition `yaml:"sources"`
}

// Load reads source definitions from a YAML file. A missing file is not an
// error; sources can also be registered through the database directly.
func Load(path string) ([]Definition, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	var file sourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse sources file: %w", err)
	}

	for i := range file.Sources {
		if err := validate(&file.Sources[i]); err != nil {
			return nil, fmt.Errorf("invalid source %q: %w", file.Sources[i].Name, err)
		}
		setDefaults(&file.Sources[i])
	}

	return file.Sources, nil
}

func validate(def *Definition) error {
	if def.Name == "" {
		return fmt.Errorf("name is required")
	}
	if def.URL == "" {
		return fmt.Errorf("url is required")
	}
	return nil
}

func setDefaults(def *Definition) {
	if def.Kind == "" {
		def.Kind = "rss"
	}
	if def.Enabled == nil {
		enabled := true
		def.Enabled = &enabled
	}
}
