package classify

import (
	"fmt"
	"strings"

	"github.com/sells-group/location-intel/internal/model"
	"github.com/sells-group/location-intel/pkg/anthropic"
)

const systemPrompt = `You classify nearby businesses by how strongly they compete with a proposed hospitality concept for the same customers.

Categories:
- "direct": sells a substantially overlapping product to the same audience.
- "indirect": competes for the same visit occasion with a different product.
- "irrelevant": does not meaningfully compete.

Use the fetch_reviews tool only for ambiguous cases such as generic names or an overlapping category; obvious cases do not need investigation. End with a JSON object of the form:
{"classifications":[{"index":0,"name":"...","category":"direct","confidence":4}]}
with exactly one entry per competitor and confidence from 1 (guess) to 5 (certain).`

func reviewsTool() anthropic.Tool {
	return anthropic.Tool{
		Name:        toolFetchReviews,
		Description: "Fetch up to 5 customer reviews and an editorial summary for one competitor by its place reference.",
		Properties: map[string]any{
			"place_ref": map[string]any{
				"type":        "string",
				"description": "The competitor's place reference, exactly as given in the list.",
			},
		},
		Required: []string{"place_ref"},
	}
}

func competitorPrompt(concept string, competitors []model.Competitor, locationContext string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Concept under evaluation: %q\n", concept)
	if locationContext != "" {
		fmt.Fprintf(&b, "Location context: %s\n", locationContext)
	}
	fmt.Fprintf(&b, "\nCompetitors (%d):\n", len(competitors))

	for i, comp := range competitors {
		fmt.Fprintf(&b, "%d. %s (type: %s, distance: %.0fm", i, comp.Name, comp.Type, comp.DistanceMeters)
		if comp.Rating != nil {
			fmt.Fprintf(&b, ", rating: %.1f", *comp.Rating)
		}
		if comp.PlaceRef != "" {
			fmt.Fprintf(&b, ", place_ref: %s", comp.PlaceRef)
		}
		b.WriteString(")\n")
	}

	b.WriteString("\nClassify every competitor.")
	return b.String()
}
