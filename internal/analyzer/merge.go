package analyzer

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/location-intel/internal/model"
)

// MergeCompetitors combines the commercial list with the open-map list.
// Commercial records are kept verbatim since they carry richer fields; an
// open-map record is added only if it does not fuzzy-match an entry
// already in the list. The result is sorted by distance ascending.
func MergeCompetitors(commercial, openMap []model.Competitor) []model.Competitor {
	merged := make([]model.Competitor, 0, len(commercial)+len(openMap))
	merged = append(merged, commercial...)

	for _, candidate := range openMap {
		if !fuzzyMatchAny(merged, candidate.Name) {
			merged = append(merged, candidate)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].DistanceMeters < merged[j].DistanceMeters
	})
	return merged
}

func fuzzyMatchAny(list []model.Competitor, name string) bool {
	for _, existing := range list {
		if sameVenue(existing.Name, name) {
			return true
		}
	}
	return false
}

// sameVenue reports bidirectional first-word containment: the first word
// of either name appears anywhere in the other, case and diacritic
// insensitive. Words shorter than 2 characters never match, so "t Hoekje"
// does not collapse into every name containing a t.
func sameVenue(a, b string) bool {
	fa, fb := foldName(a), foldName(b)
	if fa == "" || fb == "" {
		return false
	}
	wa, wb := firstWord(fa), firstWord(fb)
	return (len(wa) >= 2 && strings.Contains(fb, wa)) ||
		(len(wb) >= 2 && strings.Contains(fa, wb))
}

// nameFolder strips diacritics so "Café" and "Cafe" compare equal.
var nameFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldName(s string) string {
	folded, _, err := transform.String(nameFolder, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

func firstWord(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}
