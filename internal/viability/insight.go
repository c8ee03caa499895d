package viability

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/location-intel/internal/cache"
	"github.com/sells-group/location-intel/internal/model"
	"github.com/sells-group/location-intel/pkg/anthropic"
)

const (
	insightModel     = "claude-haiku-4-5-20251001"
	insightMaxTokens = 512
)

// generateInsight asks the LLM for a short narrative over the assembled
// report. Fully optional: no credential or any failure yields an empty
// string, never an error.
func (e *Engine) generateInsight(ctx context.Context, concept string, pt model.Point, result *model.ConceptCheckResult, analysis *model.LocationAnalysis) string {
	if e.llm == nil {
		return ""
	}

	key := fmt.Sprintf("loc:%s:insight:%s:%.4f:%.4f",
		cache.SourceAIText, NormalizeConcept(concept), pt.Lat, pt.Lng)
	if cached, ok := cache.GetJSONKey[string](ctx, e.cache, key); ok {
		return *cached
	}

	resp, err := e.llm.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     e.model,
		MaxTokens: insightMaxTokens,
		System:    "You write a concise viability insight for a hospitality entrepreneur. At most 150 words, no headers, no lists.",
		Messages: []anthropic.Message{
			{Role: "user", Content: insightPrompt(concept, result, analysis)},
		},
	})
	if err != nil {
		zap.L().Warn("insight generation failed", zap.String("concept", concept), zap.Error(err))
		return ""
	}
	resp.Usage.LogCost(e.model, "insight")

	insight := strings.TrimSpace(resp.TextContent())
	if insight != "" {
		e.cache.SetKey(ctx, key, cache.SourceAIText, insight)
	}
	return insight
}

func insightPrompt(concept string, result *model.ConceptCheckResult, analysis *model.LocationAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Concept: %s\nViability score: %d/100\n", concept, result.ViabilityScore)
	fmt.Fprintf(&b, "Location summary: %s\n", analysis.Summary)
	fmt.Fprintf(&b, "Competition: %s\n", result.CompetitionScan)
	fmt.Fprintf(&b, "Market gap: %s\n", result.GapNarrative)
	fmt.Fprintf(&b, "Audience: %s (score %d)\n", result.AudienceMatch.Explanation, result.AudienceMatch.Score)
	if len(result.Opportunities) > 0 {
		fmt.Fprintf(&b, "Opportunities: %s\n", strings.Join(result.Opportunities, "; "))
	}
	if len(result.Risks) > 0 {
		fmt.Fprintf(&b, "Risks: %s\n", strings.Join(result.Risks, "; "))
	}
	b.WriteString("\nWrite the insight.")
	return b.String()
}
