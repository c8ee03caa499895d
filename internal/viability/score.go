package viability

import (
	"fmt"

	"github.com/sells-group/location-intel/internal/model"
)

const minPricedCompetitors = 3

// pricePositioning averages the price level over direct and indirect
// competitors that carry one. Fewer than 3 priced venues is insufficient
// data and never reported as a mismatch.
func pricePositioning(classified *model.ClassifiedCompetitors, expectedLevel int) model.PricePositioning {
	var priced int
	var sum float64
	for _, comp := range append(append([]model.Competitor{}, classified.Direct...), classified.Indirect...) {
		if comp.PriceLevel != nil {
			priced++
			sum += float64(*comp.PriceLevel)
		}
	}

	if priced < minPricedCompetitors {
		return model.PricePositioning{
			Label:          "insufficient data",
			MatchesConcept: true,
			ExpectedLevel:  expectedLevel,
		}
	}

	avg := sum / float64(priced)
	return model.PricePositioning{
		Average:        &avg,
		Label:          priceLabel(avg),
		MatchesConcept: float64(expectedLevel) >= avg-1 && float64(expectedLevel) <= avg+1,
		ExpectedLevel:  expectedLevel,
	}
}

func priceLabel(avg float64) string {
	switch {
	case avg >= 3:
		return "upscale"
	case avg >= 2:
		return "mid-range"
	default:
		return "budget"
	}
}

// gapNarrative picks the templated market-gap sentence.
func gapNarrative(concept string, directCount, totalNearby int) string {
	switch {
	case directCount == 0 && totalNearby >= 5:
		return fmt.Sprintf("No %s found despite a lively hospitality scene: latent demand, this format is missing here.", concept)
	case directCount == 0:
		return fmt.Sprintf("No %s and little hospitality overall: a pioneer location that must create its own demand.", concept)
	case directCount >= 5:
		return fmt.Sprintf("The area is saturated with %d similar venues: differentiation is essential.", directCount)
	default:
		return fmt.Sprintf("Healthy competition with %d similar venues: room for a strong newcomer.", directCount)
	}
}

// audienceMatch scores how well the local population fits the concept's
// target audience. Base 50, fixed deltas, clamped to [0,100].
func audienceMatch(profile AudienceProfile, demographics *model.Demographics) model.AudienceMatch {
	if demographics == nil {
		return model.AudienceMatch{Score: 50, Explanation: "No demographic data available; assuming an average audience fit."}
	}

	score := 50
	var notes []string

	switch profile.AgeBracket {
	case "young":
		if demographics.AgeDistribution.YoungPct >= 30 {
			score += 20
			notes = append(notes, "strong young population")
		} else if demographics.AgeDistribution.YoungPct < 15 {
			score -= 15
			notes = append(notes, "few young residents")
		}
	case "working":
		if demographics.AgeDistribution.WorkingPct >= 55 {
			score += 15
			notes = append(notes, "large working-age population")
		} else if demographics.AgeDistribution.WorkingPct < 40 {
			score -= 15
			notes = append(notes, "small working-age population")
		}
	case "senior":
		if demographics.AgeDistribution.SeniorPct >= 25 {
			score += 15
			notes = append(notes, "large senior population")
		} else if demographics.AgeDistribution.SeniorPct < 10 {
			score -= 15
			notes = append(notes, "few senior residents")
		}
	}

	if profile.MinIncome > 0 && demographics.AvgIncome != nil {
		switch income := *demographics.AvgIncome; {
		case income >= profile.MinIncome*1.25:
			score += 20
			notes = append(notes, "income well above the concept's threshold")
		case income >= profile.MinIncome:
			score += 10
			notes = append(notes, "income meets the concept's threshold")
		case income < profile.MinIncome*0.8:
			score -= 15
			notes = append(notes, "income below the concept's threshold")
		}
	}

	if demographics.Density != nil {
		density := *demographics.Density
		switch profile.Density {
		case "urban":
			if density >= 5000 {
				score += 10
				notes = append(notes, "dense urban surroundings")
			} else if density < 1500 {
				score -= 10
				notes = append(notes, "low density for an urban concept")
			}
		case "suburban":
			if density < 3000 {
				score += 10
				notes = append(notes, "quiet surroundings fit the concept")
			} else if density >= 8000 {
				score -= 10
				notes = append(notes, "busier than the concept prefers")
			}
		}
	}

	explanation := "Average audience fit."
	if len(notes) > 0 {
		explanation = "Audience fit: " + joinNotes(notes) + "."
	}

	return model.AudienceMatch{Score: clamp(score), Explanation: explanation}
}

func joinNotes(notes []string) string {
	out := notes[0]
	for _, n := range notes[1:] {
		out += ", " + n
	}
	return out
}

// viabilityScore folds all signals into 0-100. Base 50, additive table.
// Absent signals contribute nothing: zero competitors found is only a
// bonus when a competitor scan actually ran, and a floor-value foot
// traffic estimate with low confidence is no evidence either way.
func viabilityScore(
	directCount, totalClassified int,
	transit *model.TransitAnalysis,
	audienceScore int,
	footTraffic *model.FootTraffic,
	buzzIndex float64,
	pricing model.PricePositioning,
) int {
	score := 50.0

	if totalClassified > 0 {
		switch {
		case directCount == 0:
			score += 15
		case directCount >= 10:
			score -= 20
		case directCount >= 5:
			score -= 15
		case directCount <= 2:
			score += 5
		}
	}

	if transit != nil {
		switch {
		case transit.Score >= 8:
			score += 15
		case transit.Score >= 5:
			score += 5
		case transit.Score < 2:
			score -= 10
		}
	}

	score += 0.3 * float64(audienceScore-50)

	if footTraffic != nil && footTraffic.Confidence != "low" {
		switch {
		case footTraffic.DailyEstimate > 2000:
			score += 10
		case footTraffic.DailyEstimate > 1000:
			score += 5
		case footTraffic.DailyEstimate < 300:
			score -= 5
		}
	}

	switch {
	case buzzIndex >= 7:
		score += 10
	case buzzIndex >= 4:
		score += 3
	default:
		score -= 5
	}

	if pricing.Average != nil {
		if pricing.MatchesConcept {
			score += 5
		} else {
			score -= 5
		}
	}

	return clamp(int(score))
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// assembleSignals converts each signal into at most one opportunity or
// risk line.
func assembleSignals(
	concept string,
	classified *model.ClassifiedCompetitors,
	pricing model.PricePositioning,
	transit *model.TransitAnalysis,
	audience model.AudienceMatch,
	footTraffic *model.FootTraffic,
	building *model.BuildingInfo,
	officeCount int,
) (opportunities, risks []string) {
	direct := len(classified.Direct)

	if direct == 0 {
		opportunities = append(opportunities, fmt.Sprintf("First-mover advantage: no direct %s competition nearby.", concept))
	} else if direct >= 5 {
		risks = append(risks, fmt.Sprintf("Saturated market: %d direct competitors within the search radius.", direct))
	}

	if pricing.Average != nil {
		if pricing.MatchesConcept {
			opportunities = append(opportunities, fmt.Sprintf("Concept price level fits the %s local market.", pricing.Label))
		} else {
			risks = append(risks, fmt.Sprintf("Concept price level deviates from the %s local market.", pricing.Label))
		}
	}

	if transit != nil {
		if transit.Score >= 8 {
			opportunities = append(opportunities, "Excellent public transport accessibility widens the catchment area.")
		} else if transit.Score < 2 {
			risks = append(risks, "Poor public transport accessibility limits the catchment area.")
		}
	}

	if audience.Score >= 70 {
		opportunities = append(opportunities, "Local demographics match the target audience well.")
	} else if audience.Score <= 30 {
		risks = append(risks, "Local demographics poorly match the target audience.")
	}

	if footTraffic != nil {
		if footTraffic.DailyEstimate > 2000 {
			opportunities = append(opportunities, "High estimated foot traffic supports walk-in business.")
		} else if footTraffic.DailyEstimate < 300 {
			risks = append(risks, "Low estimated foot traffic; the venue must be a destination in itself.")
		}
	}

	if officeCount >= 10 {
		opportunities = append(opportunities, fmt.Sprintf("%d offices nearby provide a weekday lunch crowd.", officeCount))
	}

	if building != nil {
		if building.HospitalitySuitable {
			opportunities = append(opportunities, "Building zoning already allows hospitality use.")
		} else {
			risks = append(risks, "Building zoning may require a change-of-use permit for hospitality.")
		}
	}

	return opportunities, risks
}
