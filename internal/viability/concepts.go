package viability

import (
	_ "embed"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed concepts.yaml
var conceptsYAML []byte

// AudienceProfile describes who a concept is for.
type AudienceProfile struct {
	AgeBracket string  `yaml:"age_bracket"` // young, working, senior, all
	MinIncome  float64 `yaml:"min_income"`
	Density    string  `yaml:"density"`     // urban, suburban, any
	PriceLevel int     `yaml:"price_level"` // 1-4
}

// Concept is one registry entry: category keywords plus the audience the
// concept targets.
type Concept struct {
	Keywords []string        `yaml:"keywords"`
	Audience AudienceProfile `yaml:"audience"`
}

type registryFile struct {
	Concepts map[string]Concept `yaml:"concepts"`
}

var registry = loadRegistry()

func loadRegistry() map[string]Concept {
	var file registryFile
	if err := yaml.Unmarshal(conceptsYAML, &file); err != nil {
		zap.L().Error("concept registry failed to load", zap.Error(err))
		return map[string]Concept{}
	}
	return file.Concepts
}

// defaultProfile is the average-audience fallback for unknown concepts.
var defaultProfile = AudienceProfile{
	AgeBracket: "all",
	MinIncome:  0,
	Density:    "any",
	PriceLevel: 2,
}

// NormalizeConcept lowercases a concept string and joins words with
// underscores, matching registry keys.
func NormalizeConcept(concept string) string {
	return strings.Join(strings.Fields(strings.ToLower(concept)), "_")
}

// LookupConcept resolves a concept to its registry entry. Unknown
// concepts get their own words as keywords and the default profile, so
// the rest of the pipeline never special-cases them.
func LookupConcept(concept string) Concept {
	key := NormalizeConcept(concept)
	if entry, ok := registry[key]; ok {
		return entry
	}

	keywords := strings.Split(key, "_")
	return Concept{Keywords: keywords, Audience: defaultProfile}
}
