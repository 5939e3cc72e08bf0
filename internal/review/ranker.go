// Package review holds the submission review workflow: similarity ranking, the
// per-operator review session and the promotion of a submission into a published
// newsletter.
package review

import (
	"sort"
	"strings"

	"newsreview/internal/models"
	"newsreview/internal/validation"
)

// Candidate is a published newsletter proposed as similar to the submission under review.
type Candidate struct {
	Item       models.PublishedItem `json:"item"`
	Matches    []string             `json:"matches"`
	MatchCount int                  `json:"match_count"`
}

// Rank returns the published items sharing at least one category with categories,
// ordered by descending match count. Items with equal counts keep their input order.
func Rank(categories []string, items []models.PublishedItem) []Candidate {
	wanted := validation.NormalizeCategories(categories)
	if len(wanted) == 0 {
		return []Candidate{}
	}

	candidates := []Candidate{}
	for _, item := range items {
		have := make(map[string]bool, len(item.Categories))
		for _, c := range item.Categories {
			have[strings.ToLower(strings.TrimSpace(c))] = true
		}

		var matches []string
		for _, c := range wanted {
			if have[c] {
				matches = append(matches, c)
			}
		}
		if len(matches) == 0 {
			continue
		}

		candidates = append(candidates, Candidate{
			Item:       item,
			Matches:    matches,
			MatchCount: len(matches),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].MatchCount > candidates[j].MatchCount
	})

	return candidates
}
