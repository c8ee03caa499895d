package provider

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/location-intel/internal/cache"
	"github.com/sells-group/location-intel/internal/geo"
	"github.com/sells-group/location-intel/internal/model"
	"github.com/sells-group/location-intel/pkg/places"
)

// hospitalityCategories is the fixed category list for the nearby scan.
var hospitalityCategories = []string{
	"restaurant",
	"cafe",
	"bar",
	"bakery",
	"coffee_shop",
	"meal_takeaway",
	"ice_cream_shop",
	"sandwich_shop",
}

const maxReviewsPerPlace = 5

// CommercialProvider resolves rich venue data from the commercial places
// API. It is fully optional: with no credential configured the client is
// nil and every method reports no data.
type CommercialProvider struct {
	client places.Client
	cache  *cache.Cache
}

// NewCommercialProvider creates a commercial places adapter. client may
// be nil when no API credential is configured.
func NewCommercialProvider(client places.Client, c *cache.Cache) *CommercialProvider {
	return &CommercialProvider{client: client, cache: c}
}

// Enabled reports whether a credential is configured.
func (p *CommercialProvider) Enabled() bool {
	return p.client != nil
}

// Fetch returns hospitality venues around pt from the commercial source,
// or nil when the source is unconfigured or failed.
func (p *CommercialProvider) Fetch(ctx context.Context, pt model.Point, radiusMeters int) []model.Competitor {
	if p.client == nil {
		return nil
	}
	if hit, ok := cache.GetJSON[[]model.Competitor](ctx, p.cache, pt, radiusMeters, cache.SourceCommercial); ok {
		return *hit
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	results, err := p.client.SearchNearby(ctx, pt.Lat, pt.Lng, radiusMeters, hospitalityCategories)
	if err != nil {
		zap.L().Debug("commercial nearby search failed", zap.Error(err))
		return nil
	}

	competitors := toCompetitors(pt, results)
	p.cache.Set(ctx, pt, radiusMeters, cache.SourceCommercial, competitors)
	return competitors
}

// SearchConcept runs a free-form text search for the viability flow. The
// query is more precise than category matching for niche concepts.
func (p *CommercialProvider) SearchConcept(ctx context.Context, concept string, pt model.Point, radiusMeters int) []model.Competitor {
	if p.client == nil {
		return nil
	}

	key := cache.Key(pt, radiusMeters, cache.SourceCommercial) + ":q:" + conceptSlug(concept)
	if hit, ok := cache.GetJSONKey[[]model.Competitor](ctx, p.cache, key); ok {
		return *hit
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	results, err := p.client.SearchText(ctx, concept, pt.Lat, pt.Lng, radiusMeters)
	if err != nil {
		zap.L().Debug("commercial text search failed",
			zap.String("concept", concept), zap.Error(err))
		return nil
	}

	competitors := toCompetitors(pt, results)
	p.cache.SetKey(ctx, key, cache.SourceCommercial, competitors)
	return competitors
}

// Details fetches reviews and an editorial summary for one place. Used
// only by the classifier's investigation tool.
func (p *CommercialProvider) Details(ctx context.Context, placeRef string) *model.PlaceReviews {
	if p.client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	details, err := p.client.Details(ctx, placeRef)
	if err != nil {
		zap.L().Debug("commercial details fetch failed",
			zap.String("place_ref", placeRef), zap.Error(err))
		return nil
	}

	out := &model.PlaceReviews{EditorialSummary: details.EditorialSummary.Text}
	for i, r := range details.Reviews {
		if i >= maxReviewsPerPlace {
			break
		}
		out.Reviews = append(out.Reviews, model.Review{
			Rating: float64(r.Rating),
			Text:   r.Text.Text,
		})
	}
	return out
}

func toCompetitors(pt model.Point, results []places.Place) []model.Competitor {
	competitors := make([]model.Competitor, 0, len(results))
	for _, place := range results {
		if place.BusinessStatus == "CLOSED_PERMANENTLY" {
			continue
		}
		comp := model.Competitor{
			Name:           place.DisplayName.Text,
			Type:           place.PrimaryType,
			DistanceMeters: geo.DistanceMeters(pt, model.Point{Lat: place.Location.Latitude, Lng: place.Location.Longitude}),
			BusinessStatus: place.BusinessStatus,
			Source:         model.SourceCommercial,
			PlaceRef:       place.ID,
		}
		if place.Rating > 0 {
			rating := place.Rating
			comp.Rating = &rating
		}
		if place.UserRatingCount > 0 {
			count := place.UserRatingCount
			comp.ReviewCount = &count
		}
		if level := places.PriceLevelValue(place.PriceLevel); level >= 0 {
			comp.PriceLevel = &level
		}
		if hour := latestCloseHour(place.RegularOpeningHours); hour != nil {
			comp.LatestCloseHour = hour
		}
		if len(place.RegularOpeningHours.WeekdayDescriptions) > 0 {
			comp.OpeningHours = strings.Join(place.RegularOpeningHours.WeekdayDescriptions, "; ")
		}
		competitors = append(competitors, comp)
	}

	sort.Slice(competitors, func(i, j int) bool {
		return competitors[i].DistanceMeters < competitors[j].DistanceMeters
	})
	return competitors
}

// latestCloseHour finds the latest closing hour across the weekly
// schedule. A period that closes past midnight counts as hour 23.
func latestCloseHour(hours places.OpeningHours) *int {
	latest := -1
	for _, period := range hours.Periods {
		hour := period.Close.Hour
		if period.Close.Day != period.Open.Day || hour < period.Open.Hour {
			hour = 23
		}
		if hour > latest {
			latest = hour
		}
	}
	if latest < 0 {
		return nil
	}
	return &latest
}

func conceptSlug(concept string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(concept)), " ", "_")
}
