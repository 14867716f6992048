package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dvloznov/nutrition-ranker/internal/logger"
	"github.com/dvloznov/nutrition-ranker/internal/metrics"
	"github.com/dvloznov/nutrition-ranker/internal/report"
)

// Options wires the collaborators of one ranking run.
type Options struct {
	TopN      int
	Opener    SourceOpener
	Presenter report.Presenter
	Metrics   *metrics.Recorder // optional
}

// RankAndReport loads the dataset at sourceURI, ranks it and presents the
// result. An empty source is not an error: the presenter receives an empty
// report. Failing to open or read the source is returned wrapped and is
// fatal for the run.
func RankAndReport(ctx context.Context, sourceURI string, opts Options) (*PipelineState, error) {
	if opts.Opener == nil {
		return nil, fmt.Errorf("RankAndReport: no source opener")
	}

	state := &PipelineState{
		RunID:     uuid.NewString(),
		SourceURI: sourceURI,
		TopN:      opts.TopN,
	}

	log := logger.WithFields(logger.FromContext(ctx), map[string]interface{}{
		"run_id": state.RunID,
		"source": sourceURI,
	})
	ctx = logger.WithContext(ctx, log)

	log.Info().Msg("Starting ranking run")

	p := NewRankingPipeline(opts.Opener, opts.Presenter, opts.Metrics)
	err := p.Execute(ctx, state)
	opts.Metrics.ObserveRun(err)
	if err != nil {
		if state.Reader != nil {
			_ = state.Reader.Close()
		}
		return state, err
	}

	if state.Dataset.Empty {
		log.Warn().Msg("Source has no header line, nothing ranked")
	}
	log.Info().
		Int("loaded", state.Dataset.Loaded()).
		Int("rejected", state.Dataset.Rejected).
		Msg("Ranking run completed")

	return state, nil
}

// LoadSource opens and loads a dataset without ranking it.
func LoadSource(ctx context.Context, opener SourceOpener, sourceURI string) (*Dataset, error) {
	state := &PipelineState{SourceURI: sourceURI}
	p := NewPipeline(&OpenSourceStep{Opener: opener}, &LoadDatasetStep{})
	if err := p.Execute(ctx, state); err != nil {
		return nil, err
	}
	return state.Dataset, nil
}
