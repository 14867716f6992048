// Package metrics records run statistics with Prometheus collectors.
// Every run owns its registry; the result can be written to a textfile for
// the node exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the collectors of one pipeline run.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	LinesRead      prometheus.Counter
	RecordsLoaded  prometheus.Counter
	LinesRejected  prometheus.Counter
	LoadDuration   prometheus.Histogram
	TopScore       prometheus.Gauge
	MealTypeGroups prometheus.Gauge
	RunsTotal      *prometheus.CounterVec
}

// NewRecorder creates a Recorder backed by a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		LinesRead: factory.NewCounter(prometheus.CounterOpts{
			Name: "nutrition_lines_read_total",
			Help: "Data lines read from the source, header excluded",
		}),
		RecordsLoaded: factory.NewCounter(prometheus.CounterOpts{
			Name: "nutrition_records_loaded_total",
			Help: "Lines parsed into records",
		}),
		LinesRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "nutrition_lines_rejected_total",
			Help: "Lines dropped by the parser",
		}),
		LoadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "nutrition_load_duration_seconds",
			Help:    "Time taken to load the dataset",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}),
		TopScore: factory.NewGauge(prometheus.GaugeOpts{
			Name: "nutrition_top_health_score",
			Help: "Health score of the highest ranked record",
		}),
		MealTypeGroups: factory.NewGauge(prometheus.GaugeOpts{
			Name: "nutrition_meal_type_groups",
			Help: "Distinct non-empty meal types in the best-per-group view",
		}),
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nutrition_runs_total",
			Help: "Pipeline runs by outcome",
		}, []string{"status"}),
	}
}

// ObserveLoad records the outcome of loading a dataset.
func (r *Recorder) ObserveLoad(lines, loaded, rejected int, d time.Duration) {
	if r == nil {
		return
	}
	r.LinesRead.Add(float64(lines))
	r.RecordsLoaded.Add(float64(loaded))
	r.LinesRejected.Add(float64(rejected))
	r.LoadDuration.Observe(d.Seconds())
}

// ObserveRanking records the ranked views.
func (r *Recorder) ObserveRanking(topScore float64, groups int) {
	if r == nil {
		return
	}
	r.TopScore.Set(topScore)
	r.MealTypeGroups.Set(float64(groups))
}

// ObserveRun counts a finished run as "success" or "failure".
func (r *Recorder) ObserveRun(err error) {
	if r == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	r.RunsTotal.WithLabelValues(status).Inc()
}

// WriteTextfile writes all collected metrics in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("WriteTextfile: %w", err)
	}
	return nil
}
