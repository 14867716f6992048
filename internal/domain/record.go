package domain

// Record represents one row of the daily food nutrition dataset.
// Records are values: the pipeline never modifies one after the parser
// builds it, and the health score is always derived, never stored.
type Record struct {
	Name     string // food item; may contain commas
	Category string

	Calories      float64
	Protein       float64 // grams
	Carbohydrates float64 // grams
	Fat           float64 // grams
	Fiber         float64 // grams
	Sugars        float64 // grams
	Sodium        float64 // milligrams
	Cholesterol   float64 // milligrams

	MealType    string // grouping key, may be empty
	WaterIntake float64
}

// HasMealType reports whether the record belongs to a meal type group.
func (r Record) HasMealType() bool {
	return r.MealType != ""
}

// Ranked is the presentation tuple for one entry of a top-N view.
type Ranked struct {
	Rank     int // 1-based position in the sorted dataset
	Name     string
	Score    float64
	Protein  float64
	Fiber    float64
	Sodium   float64
	MealType string
}

// GroupBest is the highest scoring record of a single meal type.
type GroupBest struct {
	MealType string
	Name     string
	Score    float64
}
