// Package scoring derives the health score of a nutrition record.
// Higher is healthier: protein and fiber are rewarded, while sodium, sugars,
// cholesterol and calories above a threshold are penalized.
package scoring

import (
	"math"

	"github.com/dvloznov/nutrition-ranker/internal/domain"
)

// Weights of the linear health score.
const (
	ProteinWeight = 1.5
	FiberWeight   = 2.0

	SodiumDivisor      = 150.0
	SugarsDivisor      = 3.0
	CholesterolDivisor = 40.0

	// CalorieThreshold is the number of calories that are never penalized.
	CalorieThreshold      = 400.0
	ExcessCaloriesDivisor = 80.0
)

// Breakdown holds the signed contribution of each term of the score.
type Breakdown struct {
	Protein        float64
	Fiber          float64
	Sodium         float64 // <= 0
	Sugars         float64 // <= 0
	Cholesterol    float64 // <= 0
	ExcessCalories float64 // <= 0
}

// Raw is the unclamped sum of all terms.
func (b Breakdown) Raw() float64 {
	return b.Protein + b.Fiber + b.Sodium + b.Sugars + b.Cholesterol + b.ExcessCalories
}

// Total is the health score: the raw sum clamped at zero.
func (b Breakdown) Total() float64 {
	return math.Max(0, b.Raw())
}

// Explain returns the per-term contributions for r.
func Explain(r domain.Record) Breakdown {
	return Breakdown{
		Protein:        r.Protein * ProteinWeight,
		Fiber:          r.Fiber * FiberWeight,
		Sodium:         -r.Sodium / SodiumDivisor,
		Sugars:         -r.Sugars / SugarsDivisor,
		Cholesterol:    -r.Cholesterol / CholesterolDivisor,
		ExcessCalories: -math.Max(0, r.Calories-CalorieThreshold) / ExcessCaloriesDivisor,
	}
}

// Score computes the health score of r. It never returns a negative value.
func Score(r domain.Record) float64 {
	score := r.Protein*ProteinWeight + r.Fiber*FiberWeight
	score -= r.Sodium / SodiumDivisor
	score -= r.Sugars / SugarsDivisor
	score -= r.Cholesterol / CholesterolDivisor
	score -= math.Max(0, r.Calories-CalorieThreshold) / ExcessCaloriesDivisor
	return math.Max(0, score)
}
