package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dvloznov/nutrition-ranker/internal/domain"
)

var (
	// ErrTooFewFields is returned for lines with fewer than MinFields tokens.
	ErrTooFewFields = errors.New("too few fields")

	// ErrMalformedLine is returned when extracting a line fails unexpectedly.
	ErrMalformedLine = errors.New("malformed line")

	// ErrLineTooLong is recorded for lines longer than MaxLineBytes.
	ErrLineTooLong = errors.New("line too long")
)

// ParseLine converts one raw dataset line into a Record.
//
// The last TrailingFields tokens are the fixed columns. Everything before
// them is the food name, rejoined with the delimiter, so names such as
// "Milk (2%, 1 cup)" survive as long as the line has at least MinFields
// tokens. There is no quote handling: the count from the right wins.
func ParseLine(line string) (rec domain.Record, err error) {
	defer func() {
		if p := recover(); p != nil {
			rec = domain.Record{}
			err = fmt.Errorf("ParseLine: %w: %v", ErrMalformedLine, p)
		}
	}()

	line = strings.TrimSuffix(line, "\r")

	// strings.Split keeps trailing empty tokens.
	tokens := strings.Split(line, Delimiter)
	n := len(tokens)
	if n < MinFields {
		return domain.Record{}, fmt.Errorf("ParseLine: %w: got %d, want at least %d", ErrTooFewFields, n, MinFields)
	}

	name := strings.Join(tokens[:n-TrailingFields], Delimiter)
	f := tokens[n-TrailingFields:]

	return domain.Record{
		Name:          normalizeText(name),
		Category:      normalizeText(f[colCategory]),
		Calories:      parseNumber(f[colCalories]),
		Protein:       parseNumber(f[colProtein]),
		Carbohydrates: parseNumber(f[colCarbohydrates]),
		Fat:           parseNumber(f[colFat]),
		Fiber:         parseNumber(f[colFiber]),
		Sugars:        parseNumber(f[colSugars]),
		Sodium:        parseNumber(f[colSodium]),
		Cholesterol:   parseNumber(f[colCholesterol]),
		MealType:      normalizeText(f[colMealType]),
		WaterIntake:   parseNumber(f[colWaterIntake]),
	}, nil
}
