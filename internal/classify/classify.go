// Package classify sorts a competitor list into direct, indirect, and
// irrelevant buckets for a given concept. An LLM agent does the work when
// a credential is configured; a deterministic keyword fallback covers
// every failure mode, so classification itself never fails.
package classify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/location-intel/internal/cache"
	"github.com/sells-group/location-intel/internal/model"
	"github.com/sells-group/location-intel/pkg/anthropic"
)

const (
	maxAgentSteps = 8
	agentTimeout  = 15 * time.Second
	agentModel    = "claude-haiku-4-5-20251001"
	maxTokens     = 2048

	toolFetchReviews = "fetch_reviews"
)

// placeRefPattern is the shape of a well-formed commercial place ref.
var placeRefPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{4,128}$`)

// ReviewFetcher fetches reviews for one place; nil result means no data.
type ReviewFetcher interface {
	Details(ctx context.Context, placeRef string) *model.PlaceReviews
}

// Classifier buckets competitors for a concept.
type Classifier struct {
	llm     anthropic.Client
	reviews ReviewFetcher
	cache   *cache.Cache
	model   string
}

// New creates a classifier. llm may be nil when no credential is
// configured; reviews may be nil when the commercial source is absent.
func New(llm anthropic.Client, reviews ReviewFetcher, c *cache.Cache) *Classifier {
	if c == nil {
		c = cache.New(nil)
	}
	return &Classifier{llm: llm, reviews: reviews, cache: c, model: agentModel}
}

// classificationRecord is the cacheable outcome of an agent run.
type classificationRecord struct {
	ByName       map[string]string `json:"by_name"` // competitor name → category
	Investigated []string          `json:"investigated,omitempty"`
}

// Classify assigns every competitor to exactly one bucket. The agent path
// is attempted when a credential is configured; any agent failure falls
// back to the deterministic keyword classification.
func (c *Classifier) Classify(ctx context.Context, concept string, competitors []model.Competitor, keywords []string, locationContext string) *model.ClassifiedCompetitors {
	if len(competitors) == 0 {
		return &model.ClassifiedCompetitors{}
	}
	if c.llm == nil {
		return ClassifyByCategory(competitors, keywords)
	}

	key := cacheKey(concept, competitors)
	if record, ok := cache.GetJSONKey[classificationRecord](ctx, c.cache, key); ok {
		return applyRecord(competitors, record)
	}

	record, err := c.runAgent(ctx, concept, competitors, locationContext)
	if err != nil {
		zap.L().Warn("agent classification failed, using keyword fallback",
			zap.String("concept", concept), zap.Error(err))
		return ClassifyByCategory(competitors, keywords)
	}

	c.cache.SetKey(ctx, key, cache.SourceAIClassify, record)
	return applyRecord(competitors, record)
}

// cacheKey hashes the concept plus the sorted competitor names so the
// same scan with reordered results hits the same entry.
func cacheKey(concept string, competitors []model.Competitor) string {
	names := make([]string, len(competitors))
	for i, comp := range competitors {
		names[i] = comp.Name
	}
	sort.Strings(names)

	sum := sha256.Sum256([]byte(concept + "|" + strings.Join(names, "|")))
	return "loc:" + cache.SourceAIClassify + ":" + hex.EncodeToString(sum[:])
}

func applyRecord(competitors []model.Competitor, record *classificationRecord) *model.ClassifiedCompetitors {
	out := &model.ClassifiedCompetitors{
		AIClassified: true,
		Investigated: record.Investigated,
	}
	for _, comp := range competitors {
		switch record.ByName[comp.Name] {
		case model.CategoryDirect:
			out.Direct = append(out.Direct, comp)
		case model.CategoryIrrelevant:
			out.Irrelevant = append(out.Irrelevant, comp)
		default:
			out.Indirect = append(out.Indirect, comp)
		}
	}
	return out
}

// runAgent drives the bounded tool-calling loop. Termination is either
// the model emitting its final JSON or the step/time budget running out;
// the timeout is a real context deadline so in-flight calls are aborted,
// not abandoned.
func (c *Classifier) runAgent(ctx context.Context, concept string, competitors []model.Competitor, locationContext string) (*classificationRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, agentTimeout)
	defer cancel()

	refsByValue := knownRefs(competitors)
	investigated := map[string]bool{}

	messages := []anthropic.Message{
		{Role: "user", Content: competitorPrompt(concept, competitors, locationContext)},
	}

	var finalText string
	for step := 0; step < maxAgentSteps; step++ {
		resp, err := c.llm.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     c.model,
			MaxTokens: maxTokens,
			System:    systemPrompt,
			Messages:  messages,
			Tools:     []anthropic.Tool{reviewsTool()},
		})
		if err != nil {
			return nil, err
		}
		resp.Usage.LogCost(c.model, "classify")

		if resp.StopReason != "tool_use" {
			finalText = resp.TextContent()
			break
		}

		messages = append(messages, anthropic.Message{Role: "assistant", Blocks: resp.Content})

		var results []anthropic.ContentBlock
		for _, use := range resp.ToolUses() {
			content := c.handleToolUse(ctx, use, refsByValue, investigated)
			results = append(results, anthropic.ContentBlock{
				Type:      "tool_result",
				ToolUseID: use.ID,
				Content:   content,
			})
		}
		messages = append(messages, anthropic.Message{Role: "user", Blocks: results})
	}

	if finalText == "" {
		return nil, fmt.Errorf("agent did not produce a final answer within %d steps", maxAgentSteps)
	}

	parsed, err := extractClassifications(finalText)
	if err != nil {
		return nil, err
	}

	return reconcile(competitors, parsed, investigated)
}

// handleToolUse validates and serves one fetch_reviews call. The agent
// can fabricate plausible refs for open-map-only records, so anything
// unverifiable short-circuits to an empty payload without an upstream
// call.
func (c *Classifier) handleToolUse(ctx context.Context, use anthropic.ContentBlock, refsByValue map[string]string, investigated map[string]bool) string {
	empty := `{"reviews":[]}`
	if use.Name != toolFetchReviews {
		return empty
	}

	var input struct {
		PlaceRef string `json:"place_ref"`
	}
	if err := json.Unmarshal(use.Input, &input); err != nil {
		return empty
	}

	name, known := refsByValue[input.PlaceRef]
	if !known || !placeRefPattern.MatchString(input.PlaceRef) {
		zap.L().Debug("agent asked for unknown place ref, returning empty reviews",
			zap.String("place_ref", input.PlaceRef))
		return empty
	}

	if c.reviews == nil {
		return empty
	}
	reviews := c.reviews.Details(ctx, input.PlaceRef)
	if reviews == nil {
		return empty
	}

	investigated[name] = true
	payload, err := json.Marshal(reviews)
	if err != nil {
		return empty
	}
	return string(payload)
}

func knownRefs(competitors []model.Competitor) map[string]string {
	refs := make(map[string]string)
	for _, comp := range competitors {
		if comp.PlaceRef != "" {
			refs[comp.PlaceRef] = comp.Name
		}
	}
	return refs
}

// reconcile turns the agent's partial output into a complete record over
// the full competitor index domain.
func reconcile(competitors []model.Competitor, parsed []rawClassification, investigated map[string]bool) (*classificationRecord, error) {
	categories := make([]string, len(competitors))
	confidences := make([]int, len(competitors))

	byName := make(map[string]int, len(competitors))
	for i, comp := range competitors {
		byName[strings.ToLower(comp.Name)] = i
	}

	for _, entry := range parsed {
		idx := -1
		if entry.Index != nil && *entry.Index >= 0 && *entry.Index < len(competitors) {
			idx = *entry.Index
		} else if i, ok := byName[strings.ToLower(entry.Name)]; ok {
			idx = i
		}
		if idx < 0 {
			zap.L().Warn("classification entry matches no competitor",
				zap.String("name", entry.Name))
			continue
		}
		categories[idx] = normalizeCategory(entry.Category)
		confidences[idx] = entry.Confidence
	}

	record := &classificationRecord{ByName: make(map[string]string, len(competitors))}
	buckets := map[string]int{}
	for i, comp := range competitors {
		category, confidence := categories[i], confidences[i]
		if category == "" {
			zap.L().Warn("agent omitted competitor, defaulting to indirect",
				zap.String("name", comp.Name))
			category, confidence = model.CategoryIndirect, 2
		}
		if investigated[comp.Name] {
			confidence = 5
		}
		if confidence <= 1 {
			category = model.CategoryIndirect
		}
		record.ByName[comp.Name] = category
		buckets[category]++
	}

	// a uniform verdict over a real list is a failed run, not a signal
	if len(competitors) >= 3 && len(buckets) == 1 {
		return nil, fmt.Errorf("agent put all %d competitors in one bucket", len(competitors))
	}

	for name := range investigated {
		record.Investigated = append(record.Investigated, name)
	}
	sort.Strings(record.Investigated)
	return record, nil
}

func normalizeCategory(category string) string {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case model.CategoryDirect:
		return model.CategoryDirect
	case model.CategoryIrrelevant:
		return model.CategoryIrrelevant
	default:
		return model.CategoryIndirect
	}
}
