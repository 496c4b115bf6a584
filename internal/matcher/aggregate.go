package matcher

import (
	"math"
	"sort"
)

// MatchPercentage converts a store distance into a similarity percentage,
// rounded to 2 decimals.
func MatchPercentage(distance float32) float64 {
	return round2((1 - float64(distance)) * 100)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// DocumentScores maps each document id to the arithmetic mean of its
// surviving section percentages, rounded to 2 decimals.
func DocumentScores(matches []SectionMatch) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, m := range matches {
		sums[m.DocumentID] += m.MatchPercentage
		counts[m.DocumentID]++
	}

	scores := make(map[string]float64, len(sums))
	for id, sum := range sums {
		scores[id] = round2(sum / float64(counts[id]))
	}
	return scores
}

// BestPerFile reduces matches to the single best match per filename. Only a
// strictly greater percentage replaces the kept match, so the first-seen hit
// wins ties. The result is ordered by percentage descending; equal
// percentages keep their first-seen order.
func BestPerFile(matches []SectionMatch) []SectionMatch {
	best := make(map[string]SectionMatch)
	var order []string
	for _, m := range matches {
		current, seen := best[m.Filename]
		if !seen {
			best[m.Filename] = m
			order = append(order, m.Filename)
			continue
		}
		if m.MatchPercentage > current.MatchPercentage {
			best[m.Filename] = m
		}
	}

	result := make([]SectionMatch, 0, len(order))
	for _, filename := range order {
		result = append(result, best[filename])
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].MatchPercentage > result[j].MatchPercentage
	})
	return result
}

// Aggregate rolls raw section hits up into the full match result.
func Aggregate(matches []SectionMatch) *MatchResult {
	return &MatchResult{
		Matches:        matches,
		DocumentScores: DocumentScores(matches),
		BestPerFile:    BestPerFile(matches),
	}
}
