package provider

import "github.com/sells-group/location-intel/internal/model"

// Foot traffic weights. The estimate is a rough daily passers-by count
// built from whatever sources landed; each weight caps its contribution
// so a single strong signal cannot dominate.
const (
	walkoutRate      = 0.05
	walkoutCap       = 1500
	transitWeight    = 150
	clusterWeight    = 50
	clusterCap       = 1000
	officeHeadcount  = 25
	officeLunchRate  = 0.3
	reviewWeight     = 0.5
	reviewCap        = 750
	eveningBonus     = 200
	eveningCloseHour = 22
	eveningMinVenues = 2
	upscaleBonus     = 150
	upscaleMinPriced = 3
	upscaleAvgLevel  = 2.5
	footTrafficFloor = 100
)

// EstimateFootTraffic derives a daily passers-by estimate from the other
// adapters' outputs. Pure function, no I/O. The result is always a
// multiple of 100 and at least 100; confidence reflects how many distinct
// source types contributed.
func EstimateFootTraffic(
	demographics *model.Demographics,
	transit *model.TransitAnalysis,
	openmap *model.OpenMapAnalysis,
	commercial []model.Competitor,
) *model.FootTraffic {
	var estimate float64
	var sources []string

	if demographics != nil && demographics.Population > 0 {
		walkout := float64(demographics.Population) * walkoutRate
		if walkout > walkoutCap {
			walkout = walkoutCap
		}
		estimate += walkout
		sources = append(sources, "demographics")
	}

	if transit != nil {
		estimate += transit.Score * transitWeight
		sources = append(sources, "transit")
	}

	if openmap != nil {
		cluster := float64(len(openmap.Competitors)+openmap.Complementary) * clusterWeight
		if cluster > clusterCap {
			cluster = clusterCap
		}
		estimate += cluster
		sources = append(sources, "openmap")

		if openmap.OfficeCount > 0 {
			estimate += float64(openmap.OfficeCount) * officeHeadcount * officeLunchRate
			sources = append(sources, "offices")
		}
	}

	if len(commercial) > 0 {
		var reviews int
		for _, c := range commercial {
			if c.ReviewCount != nil {
				reviews += *c.ReviewCount
			}
		}
		popularity := float64(reviews) * reviewWeight
		if popularity > reviewCap {
			popularity = reviewCap
		}
		estimate += popularity
		sources = append(sources, "commercial")

		if eveningVenues(commercial) >= eveningMinVenues {
			estimate += eveningBonus
		}
		if priced, avg := averagePriceLevel(commercial); priced >= upscaleMinPriced && avg >= upscaleAvgLevel {
			estimate += upscaleBonus
		}
	}

	daily := int(estimate/100+0.5) * 100
	if daily < footTrafficFloor {
		daily = footTrafficFloor
	}

	return &model.FootTraffic{
		DailyEstimate: daily,
		Confidence:    footTrafficConfidence(len(sources)),
		Sources:       sources,
	}
}

func eveningVenues(competitors []model.Competitor) int {
	var n int
	for _, c := range competitors {
		if c.LatestCloseHour != nil && *c.LatestCloseHour >= eveningCloseHour {
			n++
		}
	}
	return n
}

// averagePriceLevel returns how many competitors carry a price level and
// their average.
func averagePriceLevel(competitors []model.Competitor) (int, float64) {
	var priced int
	var sum float64
	for _, c := range competitors {
		if c.PriceLevel != nil {
			priced++
			sum += float64(*c.PriceLevel)
		}
	}
	if priced == 0 {
		return 0, 0
	}
	return priced, sum / float64(priced)
}

func footTrafficConfidence(sourceCount int) string {
	switch {
	case sourceCount >= 5:
		return "high"
	case sourceCount >= 3:
		return "medium"
	default:
		return "low"
	}
}
