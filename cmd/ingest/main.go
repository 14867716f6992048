package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dvloznov/nutrition-ranker/internal/config"
	"github.com/dvloznov/nutrition-ranker/internal/logger"
	"github.com/dvloznov/nutrition-ranker/internal/pipeline"
	"github.com/dvloznov/nutrition-ranker/internal/source"
)

// maxShownRejections limits how many rejected lines are printed.
const maxShownRejections = 10

func main() {
	// Parse CLI flags
	configPath := flag.String("config", "", "YAML config file")
	sourceURI := flag.String("source", "", "Dataset source (path, file://, gs:// or s3://)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	flag.Parse()

	cfg, err := loadConfig(*configPath, *sourceURI, *logLevel)
	if err != nil {
		fallback := logger.New()
		fallback.Error().Err(err).Msg("Invalid configuration")
		os.Exit(1)
	}

	// Initialize structured logger
	log, err := logger.NewWithLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Create context with timeout so the check doesn't hang on remote sources
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	ctx = logger.WithContext(ctx, log)

	log.Info().Str("source", cfg.Source).Msg("Checking dataset")

	ds, err := pipeline.LoadSource(ctx, source.NewOpener(cfg.SourceOptions()), cfg.Source)
	if err != nil {
		log.Error().Err(err).Msg("Load failed")
		if errors.Is(err, source.ErrUnavailable) {
			os.Exit(2)
		}
		os.Exit(3)
	}

	if ds.Empty {
		fmt.Println("Source is empty.")
		return
	}

	fmt.Printf("Loaded:   %d\n", ds.Loaded())
	fmt.Printf("Rejected: %d\n", ds.Rejected)

	for i, rej := range ds.Rejections {
		if i == maxShownRejections {
			fmt.Printf("  ... and %d more\n", ds.Rejected-maxShownRejections)
			break
		}
		fmt.Printf("  line %d: %s\n", rej.Line, rej.Reason)
	}
}

// loadConfig reads the config file and environment, applies the flags and
// validates the result.
func loadConfig(path, sourceURI, logLevel string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if sourceURI != "" {
		cfg.Source = sourceURI
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
