package ai

import (
	"embed"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/categories.yaml
var categoriesYAML embed.FS

// CategoryRegistry holds the category vocabulary and the keyword fallbacks
// applied when the model response is unusable.
type CategoryRegistry struct {
	Default        string            `yaml:"default"`
	Categories     []string          `yaml:"categories"`
	Keywords       map[string]string `yaml:"keywords"`
	IncomeMarkers  []string          `yaml:"income_markers"`
	ExpenseMarkers []string          `yaml:"expense_markers"`
}

var (
	registryOnce sync.Once
	registry     *CategoryRegistry
	registryErr  error
)

// LoadCategoryRegistry parses the embedded categories.yaml; process-wide
// read-only once loaded.
func LoadCategoryRegistry() (*CategoryRegistry, error) {
	registryOnce.Do(func() {
		data, err := categoriesYAML.ReadFile("config/categories.yaml")
		if err != nil {
			registryErr = err
			return
		}
		var reg CategoryRegistry
		if err := yaml.Unmarshal(data, &reg); err != nil {
			registryErr = err
			return
		}
		if reg.Default == "" {
			reg.Default = "Other"
		}
		registry = &reg
	})
	return registry, registryErr
}

// Classify maps free text to a category through the keyword table. Keywords
// are checked in sorted order so the result is stable when several match.
func (r *CategoryRegistry) Classify(text string) string {
	lower := strings.ToLower(text)
	keys := make([]string, 0, len(r.Keywords))
	for k := range r.Keywords {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, keyword := range keys {
		if strings.Contains(lower, keyword) {
			return r.Keywords[keyword]
		}
	}
	return r.Default
}

// Known reports whether the model-proposed category is in the vocabulary.
func (r *CategoryRegistry) Known(category string) bool {
	for _, c := range r.Categories {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}
