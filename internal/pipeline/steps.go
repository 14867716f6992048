package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dvloznov/nutrition-ranker/internal/domain"
	"github.com/dvloznov/nutrition-ranker/internal/logger"
	"github.com/dvloznov/nutrition-ranker/internal/metrics"
	"github.com/dvloznov/nutrition-ranker/internal/ranking"
	"github.com/dvloznov/nutrition-ranker/internal/report"
	"github.com/dvloznov/nutrition-ranker/internal/source"
)

// PipelineStep represents a single step in the ranking pipeline.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	RunID     string
	SourceURI string
	TopN      int

	Reader  io.ReadCloser
	Dataset *Dataset
	Sorted  []domain.Record
	Report  report.Report
}

// OpenSourceStep opens the dataset source.
type OpenSourceStep struct {
	Opener SourceOpener
}

func (s *OpenSourceStep) Execute(ctx context.Context, state *PipelineState) error {
	rc, err := s.Opener.Open(ctx, state.SourceURI)
	if err != nil {
		return err
	}
	state.Reader = rc
	return nil
}

// LoadDatasetStep parses every line of the opened source and closes it.
type LoadDatasetStep struct {
	Metrics *metrics.Recorder
}

func (s *LoadDatasetStep) Execute(ctx context.Context, state *PipelineState) error {
	if state.Reader == nil {
		return fmt.Errorf("LoadDatasetStep: source not opened")
	}
	defer func() {
		_ = state.Reader.Close()
		state.Reader = nil
	}()

	started := time.Now()
	ds, err := Load(ctx, state.Reader)
	if err != nil {
		// An opened source that cannot be read is as fatal as a missing one.
		return fmt.Errorf("LoadDatasetStep: %w: %w", source.ErrUnavailable, err)
	}
	state.Dataset = ds
	s.Metrics.ObserveLoad(ds.Lines, ds.Loaded(), ds.Rejected, time.Since(started))
	return nil
}

// RankStep sorts the dataset and builds the report views.
type RankStep struct {
	Metrics *metrics.Recorder
}

func (s *RankStep) Execute(ctx context.Context, state *PipelineState) error {
	if state.Dataset == nil {
		return fmt.Errorf("RankStep: dataset not loaded")
	}

	state.Sorted = ranking.Rank(state.Dataset.Records)

	r := report.Report{
		Source:   state.SourceURI,
		Loaded:   state.Dataset.Loaded(),
		Rejected: state.Dataset.Rejected,
		Top:      ranking.TopN(state.Sorted, state.TopN),
		Groups:   ranking.BestPerMealType(state.Sorted),
	}
	if best, ok := ranking.Best(state.Sorted); ok {
		r.Best = &best
		s.Metrics.ObserveRanking(best.Score, len(r.Groups))
	}
	state.Report = r

	log := logger.FromContext(ctx)
	log.Debug().
		Int("top", len(r.Top)).
		Int("groups", len(r.Groups)).
		Msg("Ranking complete")
	return nil
}

// PresentStep hands the report to the presenter.
type PresentStep struct {
	Presenter report.Presenter
}

func (s *PresentStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Presenter == nil {
		return nil
	}
	return s.Presenter.Present(ctx, state.Report)
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}

// NewRankingPipeline creates the standard open → load → rank → present pipeline.
func NewRankingPipeline(opener SourceOpener, presenter report.Presenter, rec *metrics.Recorder) *Pipeline {
	return NewPipeline(
		&OpenSourceStep{Opener: opener},
		&LoadDatasetStep{Metrics: rec},
		&RankStep{Metrics: rec},
		&PresentStep{Presenter: presenter},
	)
}
