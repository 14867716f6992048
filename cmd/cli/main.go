package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/nutrition-ranker/internal/config"
	"github.com/dvloznov/nutrition-ranker/internal/gcsuploader"
	"github.com/dvloznov/nutrition-ranker/internal/logger"
	"github.com/dvloznov/nutrition-ranker/internal/metrics"
	"github.com/dvloznov/nutrition-ranker/internal/pipeline"
	"github.com/dvloznov/nutrition-ranker/internal/report"
	"github.com/dvloznov/nutrition-ranker/internal/scoring"
	"github.com/dvloznov/nutrition-ranker/internal/source"
)

const defaultChartFile = "healthiest_top.png"

// Process exit codes.
const (
	exitOK                = 0
	exitUsage             = 1
	exitSourceUnavailable = 2
	exitFailure           = 3
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitUsage)
	}

	switch os.Args[1] {
	case "rank":
		os.Exit(runRank(log, os.Args[2:]))
	case "chart":
		os.Exit(runChart(log, os.Args[2:]))
	case "upload":
		os.Exit(runUpload(log, os.Args[2:]))
	case "inspect":
		os.Exit(runInspect(os.Args[2:]))
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(exitUsage)
	}
}

func printUsage() {
	fmt.Println("Nutrition Ranker CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  rank      Rank a dataset and print the healthiest foods")
	fmt.Println("  chart     Rank a dataset and draw a bar chart of the top foods")
	fmt.Println("  upload    Upload a local file (e.g. a chart) to GCS")
	fmt.Println("  inspect   Parse a single dataset line and explain its score")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nSources may be local paths, file://, gs://bucket/object or s3://bucket/key.")
	fmt.Println("Run 'cli <command> -h' for more information on a command.")
}

// runFlags are shared by rank and chart.
type runFlags struct {
	configPath  string
	source      string
	topN        int
	logLevel    string
	metricsFile string
	chartOut    string
	fontPath    string
	upload      string

	// defaultOut is the chart file used when neither the flags nor the
	// config name one. Empty means no chart unless asked for.
	defaultOut string
}

func (f *runFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "YAML config file")
	fs.StringVar(&f.source, "source", "", "Dataset source (default "+pipeline.DefaultSourceURI+")")
	fs.IntVar(&f.topN, "top", 0, "Number of foods in the top list (default 10)")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&f.metricsFile, "metrics", "", "Write run metrics to this file (Prometheus text format)")
	fs.StringVar(&f.fontPath, "font", "", "TrueType font for the chart (default: bundled Go font)")
	fs.StringVar(&f.upload, "upload", "", "Upload the chart to this gs:// URI")
}

// resolve loads the config file and environment, then applies flags on top.
func (f *runFlags) resolve() (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.source != "" {
		cfg.Source = f.source
	}
	if f.topN != 0 {
		cfg.TopN = f.topN
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if f.metricsFile != "" {
		cfg.MetricsFile = f.metricsFile
	}
	if f.chartOut != "" {
		cfg.Chart.Output = f.chartOut
	}
	if f.fontPath != "" {
		cfg.Chart.FontPath = f.fontPath
	}
	if f.upload != "" {
		cfg.Chart.Upload = f.upload
	}
	if cfg.Chart.Output == "" && f.defaultOut != "" {
		cfg.Chart.Output = f.defaultOut
		if cfg.Chart.Upload != "" && !strings.HasSuffix(cfg.Chart.Upload, "/") {
			cfg.Chart.Output = gcsuploader.ExtractFilenameFromGCSURI(cfg.Chart.Upload)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Chart.Upload != "" {
		if cfg.Chart.Output == "" {
			return nil, fmt.Errorf("%w: -upload needs a chart file (-chart)", config.ErrInvalid)
		}
		if _, _, err := gcsuploader.ParseUploadTarget(cfg.Chart.Upload, cfg.Chart.Output); err != nil {
			return nil, fmt.Errorf("%w: %w", config.ErrInvalid, err)
		}
	}
	return cfg, nil
}

func runRank(log zerolog.Logger, args []string) int {
	fs := flag.NewFlagSet("rank", flag.ExitOnError)
	var f runFlags
	f.register(fs)
	fs.StringVar(&f.chartOut, "chart", "", "Also draw a bar chart to this PNG file")
	fs.Parse(args)

	cfg, err := f.resolve()
	if err != nil {
		log.Error().Err(err).Msg("Invalid configuration")
		return exitUsage
	}

	presenters := report.MultiPresenter{report.NewTextPresenter(os.Stdout)}
	if cfg.Chart.Output != "" {
		chart, err := report.NewChartPresenter(cfg.Chart.Output, report.ChartOptions{Width: cfg.Chart.Width, FontPath: cfg.Chart.FontPath})
		if err != nil {
			log.Error().Err(err).Msg("Failed to prepare chart")
			return exitFailure
		}
		presenters = append(presenters, chart)
	}

	return execute(cfg, presenters, gcsuploader.NewGCSStorageService(cfg.GCS.CredentialsFile))
}

func runChart(log zerolog.Logger, args []string) int {
	fs := flag.NewFlagSet("chart", flag.ExitOnError)
	f := runFlags{defaultOut: defaultChartFile}
	f.register(fs)
	fs.StringVar(&f.chartOut, "out", "", "PNG file to write (default "+defaultChartFile+", or the -upload file name)")
	fs.Parse(args)

	cfg, err := f.resolve()
	if err != nil {
		log.Error().Err(err).Msg("Invalid configuration")
		return exitUsage
	}

	chart, err := report.NewChartPresenter(cfg.Chart.Output, report.ChartOptions{Width: cfg.Chart.Width, FontPath: cfg.Chart.FontPath})
	if err != nil {
		log.Error().Err(err).Msg("Failed to prepare chart")
		return exitFailure
	}

	return execute(cfg, chart, gcsuploader.NewGCSStorageService(cfg.GCS.CredentialsFile))
}

// execute runs the ranking pipeline and maps its outcome to an exit code.
// The chart, when configured, is uploaded through storage.
func execute(cfg *config.Config, presenter report.Presenter, storage gcsuploader.StorageService) int {
	log, err := logger.NewWithLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsage
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	var rec *metrics.Recorder
	if cfg.MetricsFile != "" {
		rec = metrics.NewRecorder()
	}

	state, err := pipeline.RankAndReport(ctx, cfg.Source, pipeline.Options{
		TopN:      cfg.TopN,
		Opener:    source.NewOpener(cfg.SourceOptions()),
		Presenter: presenter,
		Metrics:   rec,
	})

	if werr := rec.WriteTextfile(cfg.MetricsFile); werr != nil {
		log.Warn().Err(werr).Str("path", cfg.MetricsFile).Msg("Failed to write metrics")
	}

	if err != nil {
		if errors.Is(err, source.ErrUnavailable) {
			log.Error().Err(err).Str("source", cfg.Source).Msg("Data file not available")
			return exitSourceUnavailable
		}
		log.Error().Err(err).Msg("Ranking failed")
		return exitFailure
	}

	if cfg.Chart.Upload == "" {
		return exitOK
	}
	if state.Report.IsEmpty() {
		log.Warn().Str("uri", cfg.Chart.Upload).Msg("No chart drawn, skipping upload")
		return exitOK
	}

	bucket, object, err := gcsuploader.ParseUploadTarget(cfg.Chart.Upload, cfg.Chart.Output)
	if err != nil {
		log.Error().Err(err).Msg("Invalid upload target")
		return exitUsage
	}
	if err := storage.UploadFile(ctx, bucket, object, cfg.Chart.Output); err != nil {
		log.Error().Err(err).Str("bucket", bucket).Str("object", object).Msg("Chart upload failed")
		return exitFailure
	}
	log.Info().Str("bucket", bucket).Str("object", object).Msg("Chart uploaded")

	return exitOK
}

func runUpload(log zerolog.Logger, args []string) int {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	bucketName := fs.String("bucket", "", "GCS bucket name")
	objectName := fs.String("object", "", "GCS object name (defaults to filename)")
	filePath := fs.String("file", "", "Path to local file")
	credentials := fs.String("credentials", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"), "Service account key file")
	fs.Parse(args)

	if *bucketName == "" || *filePath == "" {
		log.Error().Msg("Usage: cli upload -bucket NAME -file PATH")
		return exitUsage
	}

	if *objectName == "" {
		*objectName = filepath.Base(*filePath)
	}

	ctx := logger.WithContext(context.Background(), log)

	log.Info().
		Str("bucket", *bucketName).
		Str("object", *objectName).
		Str("file", *filePath).
		Msg("Uploading file to GCS")

	var svc gcsuploader.StorageService = gcsuploader.NewGCSStorageService(*credentials)
	if err := svc.UploadFile(ctx, *bucketName, *objectName, *filePath); err != nil {
		log.Error().Err(err).Msg("Upload failed")
		return exitFailure
	}

	fmt.Printf("Uploaded %s to gs://%s/%s\n", *filePath, *bucketName, *objectName)
	return exitOK
}

func runInspect(args []string) int {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	line := fs.String("line", "", "Raw dataset line to parse")
	fs.Parse(args)

	if *line == "" {
		fmt.Fprintln(os.Stderr, "Error: --line is required")
		return exitUsage
	}

	rec, err := pipeline.ParseLine(*line)
	if err != nil {
		fmt.Printf("Rejected: %v\n", err)
		return exitOK
	}

	fmt.Println("\n=== Record ===")
	fmt.Printf("Name:          %s\n", rec.Name)
	fmt.Printf("Category:      %s\n", rec.Category)
	fmt.Printf("Meal type:     %s\n", rec.MealType)
	fmt.Printf("Calories:      %.1f kcal\n", rec.Calories)
	fmt.Printf("Protein:       %.1f g\n", rec.Protein)
	fmt.Printf("Carbohydrates: %.1f g\n", rec.Carbohydrates)
	fmt.Printf("Fat:           %.1f g\n", rec.Fat)
	fmt.Printf("Fiber:         %.1f g\n", rec.Fiber)
	fmt.Printf("Sugars:        %.1f g\n", rec.Sugars)
	fmt.Printf("Sodium:        %.0f mg\n", rec.Sodium)
	fmt.Printf("Cholesterol:   %.0f mg\n", rec.Cholesterol)
	fmt.Printf("Water intake:  %.0f\n", rec.WaterIntake)

	b := scoring.Explain(rec)
	fmt.Println("\n=== Health score ===")
	fmt.Printf("  protein         %+8.2f\n", b.Protein)
	fmt.Printf("  fiber           %+8.2f\n", b.Fiber)
	fmt.Printf("  sodium          %+8.2f\n", b.Sodium)
	fmt.Printf("  sugars          %+8.2f\n", b.Sugars)
	fmt.Printf("  cholesterol     %+8.2f\n", b.Cholesterol)
	fmt.Printf("  excess calories %+8.2f\n", b.ExcessCalories)
	fmt.Printf("  raw             %+8.2f\n", b.Raw())
	fmt.Printf("  score           %8.2f\n", b.Total())
	fmt.Println()
	return exitOK
}
