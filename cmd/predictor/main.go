package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/match-predictor-service/internal/cache"
	"github.com/cypherlabdev/match-predictor-service/internal/config"
	"github.com/cypherlabdev/match-predictor-service/internal/dataset"
	"github.com/cypherlabdev/match-predictor-service/internal/messaging"
	"github.com/cypherlabdev/match-predictor-service/internal/metrics"
	"github.com/cypherlabdev/match-predictor-service/internal/models"
	"github.com/cypherlabdev/match-predictor-service/internal/report"
	"github.com/cypherlabdev/match-predictor-service/internal/service"
	"github.com/cypherlabdev/match-predictor-service/pkg/poisson"
)

const usage = `usage: predictor [flags] [results.csv]

Fits a Poisson model on the match results and writes predictions_<name>.csv with
one row per fixture. Without -fixtures every unplayed home/away pairing is predicted.

flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// run executes one batch prediction. Any error leaves no report behind.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("predictor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}

	configPath := fs.String("config", "", "YAML config file")
	fixturesPath := fs.String("fixtures", "", "CSV with HomeTeam and AwayTeam columns to predict instead of the remaining fixtures")
	maxGoals := fs.Int("max-goals", poisson.DefaultMaxGoals, "highest goal count per side in the score matrix")
	outDir := fs.String("out", "", "output directory (default from config)")
	publish := fs.Bool("publish", false, "publish the batch to the broker enabled in config")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return fmt.Errorf("expected one results file, got %d", fs.NArg())
	}
	inputPath := fs.Arg(0)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "max-goals":
			cfg.Model.MaxGoals = *maxGoals
		case "out":
			cfg.Output.Dir = *outDir
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}
	if inputPath == "" && cfg.Input.Source == "csv" && cfg.Input.Path == "" {
		fs.Usage()
		return fmt.Errorf("%w: no results file given", dataset.ErrInputNotFound)
	}

	logger := setupLogger(cfg.Logging, stderr)

	source, err := dataset.NewSource(ctx, cfg.Input, inputPath, logger)
	if err != nil {
		return err
	}
	defer source.Close()

	var predictionCache service.Cache = cache.NopCache{}
	if cfg.Redis.Enabled {
		redisCache := cache.NewRedisCache(cache.RedisCacheConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		}, logger)
		defer redisCache.Close()
		predictionCache = redisCache
	}

	var publisher service.Publisher = messaging.NopPublisher{}
	if *publish {
		publisher, err = messaging.NewPublisher(cfg.Kafka, cfg.AMQP, logger)
		if err != nil {
			return err
		}
	}
	defer publisher.Close()

	predictor := poisson.NewPredictor(cfg.Model.ToModelParams(), logger)
	svc := service.NewPredictionService(predictor, predictionCache, publisher, metrics.New(prometheus.NewRegistry()), logger)

	model, err := svc.FitFromSource(ctx, source)
	if err != nil {
		return err
	}

	var fixtures []models.Fixture
	if *fixturesPath != "" {
		fixtures, err = dataset.ReadFixturesCSV(*fixturesPath)
		if err != nil {
			return err
		}
	} else {
		fixtures = model.RemainingFixtures()
	}

	batch, err := svc.PredictBatch(ctx, fixtures)
	if err != nil {
		return err
	}

	name := inputPath
	if name == "" {
		name = cfg.Input.Path
	}
	if name == "" {
		name = cfg.Input.Table
	}
	outPath := filepath.Join(cfg.Output.Dir, report.OutputFileName(name))
	if err := report.WriteCSV(outPath, batch.Predictions); err != nil {
		return err
	}

	logger.Info().
		Str("output", outPath).
		Str("model_id", model.ID).
		Int("predictions", len(batch.Predictions)).
		Msg("predictions written")

	if err := printSummary(stdout, batch.Predictions); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "\npredictions written to %s\n", outPath)

	return nil
}

// printSummary writes the report rows as an aligned table
func printSummary(w io.Writer, predictions []*models.Prediction) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, col := range report.Header {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, col)
	}
	fmt.Fprintln(tw)

	for _, p := range predictions {
		for i, cell := range report.NewRow(p).Record() {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, cell)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

// setupLogger configures the logger based on config
func setupLogger(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", "match-predictor").
		Logger()
}
