package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/emiliogq/matchweek/internal/app"
	"github.com/emiliogq/matchweek/internal/config"
	"github.com/emiliogq/matchweek/internal/domain/match"
	"github.com/emiliogq/matchweek/internal/platform/logging"
	"github.com/emiliogq/matchweek/internal/usecase"
)

func main() {
	frame := flag.String("frame", "", "time frame: all, old, this_week, next_week, recent, later (default from config)")
	store := flag.Bool("store", false, "replace the stored schedule with the fetched recent matches")
	flag.Parse()

	if err := run(*frame, *store); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(frame string, store bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if frame == "" {
		frame = cfg.DefaultTimeFrame
	}

	zapLogger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(zapLogger)
	defer func() { _ = zapLogger.Sync() }()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logging.SlogLevel(cfg.LogLevel),
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sports := make([]match.Sport, 0, len(cfg.ActiveSports))
	for _, name := range cfg.ActiveSports {
		sport, err := match.ParseSport(name)
		if err != nil {
			return err
		}
		sports = append(sports, sport)
	}

	factory := app.NewProviderFactory(cfg, zapLogger)
	aggregator := usecase.NewAggregationService(factory, cfg.AggregationWorkers)

	if store {
		repo, closeRepo, err := app.NewMatchRepository(cfg, logger)
		if err != nil {
			return err
		}
		defer func() { _ = closeRepo() }()

		svc := usecase.NewMatchService(aggregator, repo, nil, sports)
		result, err := svc.ImportRecent(ctx)
		if err != nil {
			return err
		}
		for _, failure := range result.Aggregation.Failures {
			logger.Warn("provider failed", "sport", failure.Sport, "error", failure.Message)
		}
		fmt.Printf("Stored %d matches\n\n", result.Stored)
		fmt.Print(usecase.RenderAgenda(result.Matches, true))
		return nil
	}

	result, err := aggregator.Aggregate(ctx, sports, frame)
	if err != nil {
		return err
	}
	for _, failure := range result.Failures {
		logger.Warn("provider failed", "sport", failure.Sport, "error", failure.Message)
	}

	fmt.Printf("Matches (%s)\n\n", frame)
	fmt.Print(usecase.RenderAgenda(result.Matches, true))
	return nil
}
