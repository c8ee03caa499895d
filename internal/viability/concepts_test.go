package viability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeConcept(t *testing.T) {
	assert.Equal(t, "smoothiebar", NormalizeConcept("Smoothiebar"))
	assert.Equal(t, "wine_bar", NormalizeConcept("  Wine   Bar "))
	assert.Equal(t, "vegan_restaurant", NormalizeConcept("Vegan Restaurant"))
}

func TestLookupKnownConcept(t *testing.T) {
	entry := LookupConcept("smoothiebar")

	assert.Contains(t, entry.Keywords, "juice")
	assert.Equal(t, "young", entry.Audience.AgeBracket)
	assert.Equal(t, 2, entry.Audience.PriceLevel)
}

func TestLookupUnknownConceptInfersKeywords(t *testing.T) {
	entry := LookupConcept("Ramen Noodle Shop")

	assert.Equal(t, []string{"ramen", "noodle", "shop"}, entry.Keywords)
	assert.Equal(t, defaultProfile, entry.Audience)
}

func TestRegistryLoads(t *testing.T) {
	assert.NotEmpty(t, registry)
	for name, entry := range registry {
		assert.NotEmpty(t, entry.Keywords, "concept %s has no keywords", name)
		assert.GreaterOrEqual(t, entry.Audience.PriceLevel, 1, "concept %s", name)
		assert.LessOrEqual(t, entry.Audience.PriceLevel, 4, "concept %s", name)
	}
}
