// Package report renders ranked nutrition views. Presenters only consume
// the ranked data; they perform no validation of their own.
package report

import (
	"context"
	"fmt"

	"github.com/dvloznov/nutrition-ranker/internal/domain"
)

// Report is everything a presenter receives about one run.
type Report struct {
	Source   string
	Loaded   int
	Rejected int

	Top    []domain.Ranked    // top-N view, best first
	Best   *domain.Ranked     // nil when nothing was ranked
	Groups []domain.GroupBest // best record per meal type
}

// IsEmpty reports whether there is nothing to present.
func (r Report) IsEmpty() bool {
	return len(r.Top) == 0
}

// Presenter turns a Report into some artifact: text, an image, a file.
type Presenter interface {
	Present(ctx context.Context, r Report) error
}

// PresenterFunc adapts a plain function to the Presenter interface.
type PresenterFunc func(ctx context.Context, r Report) error

func (f PresenterFunc) Present(ctx context.Context, r Report) error { return f(ctx, r) }

// MultiPresenter runs presenters in order and stops at the first failure.
type MultiPresenter []Presenter

func (m MultiPresenter) Present(ctx context.Context, r Report) error {
	for i, p := range m {
		if p == nil {
			continue
		}
		if err := p.Present(ctx, r); err != nil {
			return fmt.Errorf("presenter %d: %w", i+1, err)
		}
	}
	return nil
}
