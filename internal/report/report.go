// Package report renders a concept check as an XLSX workbook with a
// summary sheet and a competitor sheet.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/location-intel/internal/model"
)

const (
	summarySheet     = "Summary"
	competitorsSheet = "Competitors"
)

// WriteConcept renders the concept check into w as an XLSX workbook.
// The location analysis is optional; when present its source and quality
// fields enrich the summary sheet.
func WriteConcept(w io.Writer, result *model.ConceptCheckResult, analysis *model.LocationAnalysis) error {
	if result == nil {
		return eris.New("report: nil result")
	}

	f := xlsx.NewFile()

	if err := writeSummary(f, result, analysis); err != nil {
		return err
	}
	if err := writeCompetitors(f, result); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "report: write workbook")
	}
	return nil
}

// SaveConcept renders the concept check to a file at path.
func SaveConcept(path string, result *model.ConceptCheckResult, analysis *model.LocationAnalysis) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "report: create file")
	}
	defer f.Close()

	if err := WriteConcept(f, result, analysis); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrap(err, "report: close file")
	}
	return nil
}

func writeSummary(f *xlsx.File, result *model.ConceptCheckResult, analysis *model.LocationAnalysis) error {
	sheet, err := f.AddSheet(summarySheet)
	if err != nil {
		return eris.Wrap(err, "report: add summary sheet")
	}

	kv := func(key, value string) {
		row := sheet.AddRow()
		row.AddCell().SetString(key)
		row.AddCell().SetString(value)
	}

	kv("Report ID", result.ID)
	kv("Concept", result.Concept)
	kv("Location", fmt.Sprintf("%.4f, %.4f", result.Point.Lat, result.Point.Lng))
	kv("Radius (m)", fmt.Sprintf("%d", result.RadiusMeters))

	row := sheet.AddRow()
	row.AddCell().SetString("Viability score")
	row.AddCell().SetInt(result.ViabilityScore)

	kv("Competition", result.CompetitionScan)
	kv("Gap analysis", result.GapNarrative)
	kv("Audience match", fmt.Sprintf("%d/100", result.AudienceMatch.Score))
	kv("Audience notes", result.AudienceMatch.Explanation)
	kv("Price positioning", pricingLine(result.Pricing))
	kv("Opportunities", strings.Join(result.Opportunities, "; "))
	kv("Risks", strings.Join(result.Risks, "; "))

	if result.AIInsight != "" {
		kv("Insight", result.AIInsight)
	}
	if result.QualityScore != nil {
		kv("Quality score", fmt.Sprintf("%d/100", *result.QualityScore))
	}
	if len(result.QualityNotes) > 0 {
		kv("Quality notes", strings.Join(result.QualityNotes, "; "))
	}

	if analysis != nil {
		kv("Data sources", strings.Join(analysis.DataSources, ", "))
		kv("Data quality", string(analysis.DataQuality))
		kv("Fetched at", analysis.FetchedAt.Format("2006-01-02 15:04 MST"))
	}

	return nil
}

func writeCompetitors(f *xlsx.File, result *model.ConceptCheckResult) error {
	sheet, err := f.AddSheet(competitorsSheet)
	if err != nil {
		return eris.Wrap(err, "report: add competitors sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Name", "Category", "Type", "Distance (m)", "Rating", "Reviews", "Price level", "Source"} {
		header.AddCell().SetString(h)
	}

	categories := categoryIndex(result.Classified)
	for _, c := range competitorRows(result) {
		row := sheet.AddRow()
		row.AddCell().SetString(c.Name)
		row.AddCell().SetString(categories[competitorKey(c)])
		row.AddCell().SetString(c.Type)
		row.AddCell().SetFloatWithFormat(c.DistanceMeters, "0")
		if c.Rating != nil {
			row.AddCell().SetFloatWithFormat(*c.Rating, "0.0")
		} else {
			row.AddCell().SetString("")
		}
		if c.ReviewCount != nil {
			row.AddCell().SetInt(*c.ReviewCount)
		} else {
			row.AddCell().SetString("")
		}
		if c.PriceLevel != nil {
			row.AddCell().SetString(strings.Repeat("€", *c.PriceLevel))
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetString(c.Source)
	}

	return nil
}

// competitorRows prefers the full classified list over the top-5 cut.
func competitorRows(result *model.ConceptCheckResult) []model.Competitor {
	if result.Classified == nil {
		return result.TopCompetitors
	}
	rows := make([]model.Competitor, 0, result.Classified.Total())
	rows = append(rows, result.Classified.Direct...)
	rows = append(rows, result.Classified.Indirect...)
	rows = append(rows, result.Classified.Irrelevant...)
	return rows
}

func categoryIndex(classified *model.ClassifiedCompetitors) map[string]string {
	idx := make(map[string]string)
	if classified == nil {
		return idx
	}
	for _, c := range classified.Direct {
		idx[competitorKey(c)] = model.CategoryDirect
	}
	for _, c := range classified.Indirect {
		idx[competitorKey(c)] = model.CategoryIndirect
	}
	for _, c := range classified.Irrelevant {
		idx[competitorKey(c)] = model.CategoryIrrelevant
	}
	return idx
}

func competitorKey(c model.Competitor) string {
	if c.PlaceRef != "" {
		return c.PlaceRef
	}
	return strings.ToLower(c.Name)
}

func pricingLine(p model.PricePositioning) string {
	if p.Average == nil {
		return "insufficient price data"
	}
	match := "matches concept"
	if !p.MatchesConcept {
		match = "mismatch with concept"
	}
	return fmt.Sprintf("%s market (avg %.1f, expected %d): %s", p.Label, *p.Average, p.ExpectedLevel, match)
}
