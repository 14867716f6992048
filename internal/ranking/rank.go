// Package ranking orders nutrition records by health score and builds the
// views consumed by presenters.
package ranking

import (
	"sort"

	"github.com/dvloznov/nutrition-ranker/internal/domain"
	"github.com/dvloznov/nutrition-ranker/internal/scoring"
)

// DefaultTopN is the size of the top-N view when none is configured.
const DefaultTopN = 10

// Rank returns a copy of records sorted by health score, highest first.
// Records with equal scores keep their input order.
func Rank(records []domain.Record) []domain.Record {
	type scored struct {
		record domain.Record
		score  float64
	}

	items := make([]scored, len(records))
	for i, r := range records {
		items[i] = scored{record: r, score: scoring.Score(r)}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].score > items[j].score
	})

	sorted := make([]domain.Record, len(items))
	for i, it := range items {
		sorted[i] = it.record
	}
	return sorted
}

// TopN returns the first n entries of an already ranked slice.
// A non-positive n falls back to DefaultTopN.
func TopN(sorted []domain.Record, n int) []domain.Ranked {
	if n <= 0 {
		n = DefaultTopN
	}
	if n > len(sorted) {
		n = len(sorted)
	}

	top := make([]domain.Ranked, 0, n)
	for i := 0; i < n; i++ {
		top = append(top, toRanked(i+1, sorted[i]))
	}
	return top
}

// Best returns the highest scoring record of a ranked slice.
func Best(sorted []domain.Record) (domain.Ranked, bool) {
	if len(sorted) == 0 {
		return domain.Ranked{}, false
	}
	return toRanked(1, sorted[0]), true
}

// BestPerMealType walks a ranked slice and keeps the first record seen for
// every non-empty meal type. Groups appear in the order their best record
// ranks.
func BestPerMealType(sorted []domain.Record) []domain.GroupBest {
	seen := make(map[string]bool)
	groups := make([]domain.GroupBest, 0)

	for _, r := range sorted {
		if !r.HasMealType() || seen[r.MealType] {
			continue
		}
		seen[r.MealType] = true
		groups = append(groups, domain.GroupBest{
			MealType: r.MealType,
			Name:     r.Name,
			Score:    scoring.Score(r),
		})
	}
	return groups
}

func toRanked(rank int, r domain.Record) domain.Ranked {
	return domain.Ranked{
		Rank:     rank,
		Name:     r.Name,
		Score:    scoring.Score(r),
		Protein:  r.Protein,
		Fiber:    r.Fiber,
		Sodium:   r.Sodium,
		MealType: r.MealType,
	}
}
