package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/neurocosci/neuro-agent/internal/setup"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	startTime := time.Now()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	categoriesFlag := flag.String("categories", "", "Comma-separated category names; empty means all")
	delay := flag.Duration("delay", 0, "Delay between questions; zero means the configured default")
	output := flag.String("output", "", "Optional file for the JSON batch result")

	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	ctx, cancel := setupGracefulShutdown()
	defer cancel()

	cfg := setup.LoadConfig()

	deps, err := setup.Wire(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer deps.Close()

	var categories []string
	if *categoriesFlag != "" {
		for _, category := range strings.Split(*categoriesFlag, ",") {
			if trimmed := strings.TrimSpace(category); trimmed != "" {
				categories = append(categories, trimmed)
			}
		}
	}

	log.Info().
		Int("questions", len(deps.EvalRunner.Bank().Questions())).
		Strs("categories", categories).
		Msg("Starting batch evaluation")

	batch := deps.EvalRunner.RunBatch(ctx, categories, *delay)

	for category, summary := range batch.PerCategory {
		log.Info().
			Str("category", category).
			Int("passed", summary.Passed).
			Int("total", summary.Total).
			Float64("pct", summary.Pct).
			Msg("Category summary")
	}

	log.Info().
		Int("passed", batch.Overall.Passed).
		Int("total", batch.Overall.Total).
		Float64("pct", batch.Overall.Pct).
		Bool("meets_bar", batch.Overall.MeetsBar).
		Dur("duration", time.Since(startTime)).
		Msg("Batch evaluation complete")

	resultJSON, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal batch result")
	}

	if *output != "" {
		if err := os.WriteFile(*output, resultJSON, 0o644); err != nil {
			log.Fatal().Err(err).Str("file", *output).Msg("Failed to write output file")
		}
		log.Info().Str("file", *output).Msg("Batch result written")
	} else {
		fmt.Println(string(resultJSON))
	}

	if !batch.Overall.MeetsBar {
		log.Error().
			Float64("pct", batch.Overall.Pct).
			Msg("Quality bar not met")
		os.Exit(1)
	}
}

func setupGracefulShutdown() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Warn().Msg("Received interrupt signal, finishing current work...")
		cancel()
	}()

	return ctx, cancel
}
