package classify

import (
	"strings"

	"github.com/sells-group/location-intel/internal/model"
)

// ClassifyByCategory is the deterministic fallback used when no LLM
// credential is configured or the agent run failed. A competitor whose
// category contains any of the concept's keywords is direct, everything
// else is indirect. The fallback never produces irrelevant entries since
// there is no signal to justify dropping a venue from consideration.
func ClassifyByCategory(competitors []model.Competitor, keywords []string) *model.ClassifiedCompetitors {
	out := &model.ClassifiedCompetitors{}
	for _, comp := range competitors {
		if matchesKeyword(comp.Type, keywords) {
			out.Direct = append(out.Direct, comp)
		} else {
			out.Indirect = append(out.Indirect, comp)
		}
	}
	return out
}

func matchesKeyword(category string, keywords []string) bool {
	category = strings.ToLower(category)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(category, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
