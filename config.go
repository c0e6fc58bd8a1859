package main

import (
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv    = "SLACK_RANKING_CONFIG"
	botTokenEnv      = "SLACK_BOT_TOKEN"
	targetChannelEnv = "SLACK_RANKING_CHANNEL_ID"
)

// Weights are the engagement score coefficients. They are data, not
// constants: historical weight sets do not all sum to 1.0 and are kept
// exactly as configured.
type Weights struct {
	Users     float64 `yaml:"users"`
	Replies   float64 `yaml:"replies"`
	Reactions float64 `yaml:"reactions"`
}

// Sum returns the total of the three coefficients.
func (w Weights) Sum() float64 {
	return w.Users + w.Replies + w.Reactions
}

// Config holds every tunable of the ranking job.
type Config struct {
	Token           string `yaml:"-"`
	TargetChannelID string `yaml:"targetChannelId"`

	ChannelTypes    []string `yaml:"channelTypes"`
	ChannelPrefixes []string `yaml:"channelPrefixes"`

	RankLimit    int `yaml:"rankLimit"`
	FanUserLimit int `yaml:"fanUserLimit"`

	LookbackHours          int `yaml:"lookbackHours"`
	CollectLookbackMinutes int `yaml:"collectLookbackMinutes"`

	PageDelayMs    int `yaml:"pageDelayMs"`
	ChannelDelayMs int `yaml:"channelDelayMs"`

	HistoryPageLimit int `yaml:"historyPageLimit"`
	ReplyPageLimit   int `yaml:"replyPageLimit"`

	Weights       Weights `yaml:"weights"`
	DigestWeights Weights `yaml:"digestWeights"`

	LogDir string `yaml:"logDir"`
}

// PageDelay is the pacing delay between consecutive history page fetches.
func (c Config) PageDelay() time.Duration {
	return time.Duration(c.PageDelayMs) * time.Millisecond
}

// ChannelDelay is the pacing delay between consecutive channels.
func (c Config) ChannelDelay() time.Duration {
	return time.Duration(c.ChannelDelayMs) * time.Millisecond
}

// Lookback is the trailing collection window for the rank mode.
func (c Config) Lookback() time.Duration {
	return time.Duration(c.LookbackHours) * time.Hour
}

// CollectLookback is the trailing window for one collect tick.
func (c Config) CollectLookback() time.Duration {
	return time.Duration(c.CollectLookbackMinutes) * time.Minute
}

func defaultConfig() Config {
	return Config{
		ChannelTypes:           []string{"public_channel"},
		ChannelPrefixes:        []string{"cl-", "times-"},
		RankLimit:              5,
		FanUserLimit:           1,
		LookbackHours:          168,
		CollectLookbackMinutes: 60,
		PageDelayMs:            1000,
		ChannelDelayMs:         10000,
		HistoryPageLimit:       200,
		ReplyPageLimit:         1000,
		Weights:                Weights{Users: 0.5, Replies: 0.3, Reactions: 0.2},
		// Historical digest weights; they sum to 1.2 and are kept as-is.
		DigestWeights: Weights{Users: 0.6, Replies: 0.4, Reactions: 0.2},
		LogDir:        "logs",
	}
}

// loadConfig builds the configuration from defaults, an optional YAML
// file, and environment overrides, in that order. A missing or broken
// file is logged and skipped rather than failing startup.
func loadConfig(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Cannot read config file, using defaults")
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Cannot parse config file, using defaults")
			cfg = defaultConfig()
		} else {
			log.Debug().Str("path", path).Msg("Config file loaded")
		}
	}

	if v := os.Getenv(botTokenEnv); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv(targetChannelEnv); v != "" {
		cfg.TargetChannelID = v
	}

	for _, w := range []struct {
		name    string
		weights Weights
	}{{"weights", cfg.Weights}, {"digestWeights", cfg.DigestWeights}} {
		if sum := w.weights.Sum(); sum != 1.0 {
			log.Warn().
				Str("weights", w.name).
				Float64("sum", sum).
				Msg("Score weights do not sum to 1.0, using them unchanged")
		}
	}

	return cfg
}
