package pipeline

// Layout of the daily food nutrition dataset.
// These can be overridden via configuration where noted.
const (
	// Delimiter separates fields of one line. Quoting is not supported.
	Delimiter = ","

	// TrailingFields is the number of fixed fields that follow the food name.
	TrailingFields = 11

	// MinFields is the smallest token count of a well-formed line: the name
	// plus every trailing field.
	MinFields = TrailingFields + 1

	// MaxRejectionDetails caps how many rejected lines are kept with their reason.
	MaxRejectionDetails = 100

	// MaxLineBytes is the longest line the loader parses. Longer lines are
	// skipped and counted as rejections.
	MaxLineBytes = 1 << 20

	// DefaultSourceURI is the dataset read when no source is configured.
	DefaultSourceURI = "daily_food_nutrition_dataset.csv"
)

// Positions of the trailing fields, counted from the first token after the name.
const (
	colCategory = iota
	colCalories
	colProtein
	colCarbohydrates
	colFat
	colFiber
	colSugars
	colSodium
	colCholesterol
	colMealType
	colWaterIntake
)
