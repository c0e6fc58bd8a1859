package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Set up command line flags
	mode := flag.String("mode", "rank", "Run mode: rank (post both rankings), collect (append engagement rows), digest (rank today's log)")
	configPath := flag.String("config", "", "Path to YAML config file (default: $SLACK_RANKING_CONFIG)")
	logLevelStr := flag.String("log-level", "info", "Log level: trace, debug, info, warn, error, fatal, panic")
	flag.Parse()

	// Set up zerolog
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}

	// Parse log level
	logLevel, err := zerolog.ParseLevel(*logLevelStr)
	if err != nil {
		// Default to info if invalid level
		logLevel = zerolog.InfoLevel
		fmt.Printf("Invalid log level '%s', defaulting to 'info'\n", *logLevelStr)
	}
	zerolog.SetGlobalLevel(logLevel)
	log.Logger = zerolog.New(consoleWriter).With().Timestamp().Logger()

	log.Info().
		Str("level", logLevel.String()).
		Msg("Logger initialized")

	cfg := loadConfig(*configPath)

	if cfg.Token == "" {
		log.Fatal().Msgf("%s must be set", botTokenEnv)
	}
	if cfg.TargetChannelID == "" {
		log.Fatal().Msgf("%s (or targetChannelId in the config file) must be set", targetChannelEnv)
	}

	log.Info().
		Str("mode", *mode).
		Str("targetChannelID", cfg.TargetChannelID).
		Strs("channelPrefixes", cfg.ChannelPrefixes).
		Int("rankLimit", cfg.RankLimit).
		Msg("Configuration loaded")

	ws, err := newSlackWorkspace(cfg.Token)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to Slack")
	}

	runner := NewRunner(ws, cfg)
	ctx := context.Background()

	switch *mode {
	case "rank":
		err = runner.RunRankings(ctx)
	case "collect":
		err = runner.RunCollect(ctx)
	case "digest":
		err = runner.RunDigest(ctx)
	default:
		log.Fatal().Str("mode", *mode).Msg("Unknown mode")
	}

	if err != nil {
		log.Error().Err(err).Str("mode", *mode).Msg("Run finished with error")
		os.Exit(1)
	}
	log.Info().Str("mode", *mode).Msg("Run finished")
}
