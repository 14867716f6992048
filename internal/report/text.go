package report

import (
	"context"
	"fmt"
	"io"
)

// TextPresenter writes the console answer to "what is the healthiest meal?".
type TextPresenter struct {
	Out io.Writer
}

// NewTextPresenter creates a TextPresenter writing to out.
func NewTextPresenter(out io.Writer) *TextPresenter {
	return &TextPresenter{Out: out}
}

func (p *TextPresenter) Present(ctx context.Context, r Report) error {
	w := &errWriter{w: p.Out}

	if r.Source != "" {
		w.printf("Loaded %d food entries from %s\n", r.Loaded, r.Source)
	}

	if r.IsEmpty() {
		w.printf("No records to rank.\n")
		return w.err
	}

	w.printf("\n=== What is the healthiest meal? ===\n\n")
	w.printf("Top %d healthiest food items (by our health score):\n\n", len(r.Top))

	for _, e := range r.Top {
		w.printf("%2d. %-45s  Score: %6.2f  (Protein: %.1fg, Fiber: %.1fg, Sodium: %.0fmg)\n",
			e.Rank, e.Name, e.Score, e.Protein, e.Fiber, e.Sodium)
	}

	if r.Best != nil {
		w.printf("\n*** Answer: The single healthiest food item in our dataset is: \"%s\" (meal type: %s) ***\n\n",
			r.Best.Name, r.Best.MealType)
	}

	if len(r.Groups) > 0 {
		w.printf("Healthiest item per meal type:\n")
		for _, g := range r.Groups {
			w.printf("  %s: %s (score: %.2f)\n", g.MealType, g.Name, g.Score)
		}
	}

	return w.err
}

// errWriter remembers the first write error so printing can stay linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
