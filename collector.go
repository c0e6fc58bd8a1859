package main

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
	"golang.org/x/time/rate"
)

// Collector walks the target channels' history inside a lookback window.
// Channels are processed strictly one at a time: pacing, not throughput,
// is the constraint here, so both the per-page and per-channel delays
// are modeled as explicit rate limiters rather than accidental
// serialization.
type Collector struct {
	ws              Workspace
	channelTypes    []string
	channelPrefixes []string
	pageLimit       int

	pageLimiter    *rate.Limiter
	channelLimiter *rate.Limiter
}

// NewCollector creates a collector paced by the configured delays. A
// non-positive delay disables the corresponding wait.
func NewCollector(ws Workspace, cfg Config) *Collector {
	return &Collector{
		ws:              ws,
		channelTypes:    cfg.ChannelTypes,
		channelPrefixes: cfg.ChannelPrefixes,
		pageLimit:       cfg.HistoryPageLimit,
		pageLimiter:     rate.NewLimiter(rate.Every(cfg.PageDelay()), 1),
		channelLimiter:  rate.NewLimiter(rate.Every(cfg.ChannelDelay()), 1),
	}
}

// ListTargetChannels returns the channels eligible for collection: the
// bot must be a member (history calls fail otherwise), and when name
// prefixes are configured the channel name must carry one of them.
func (c *Collector) ListTargetChannels(ctx context.Context) ([]slack.Channel, error) {
	channels, err := c.ws.ListChannels(ctx, c.channelTypes)
	if err != nil {
		return nil, err
	}

	targets := make([]slack.Channel, 0, len(channels))
	for _, channel := range channels {
		if !channel.IsMember {
			continue
		}
		if !hasRankedPrefix(channel.Name, c.channelPrefixes) {
			continue
		}
		targets = append(targets, channel)
	}

	log.Info().
		Int("total", len(channels)).
		Int("targets", len(targets)).
		Strs("prefixes", c.channelPrefixes).
		Msg("Target channels discovered")

	return targets, nil
}

// hasRankedPrefix reports whether name matches the prefix convention.
// An empty prefix list means every channel qualifies.
func hasRankedPrefix(name string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// fetchChannelHistory pages through one channel's history since oldest,
// waiting on the page limiter before every call. Any failure abandons
// the rest of the channel: the pages gathered so far are returned and
// the error stays inside this boundary so one noisy channel cannot
// abort the batch. Every returned message is stamped with its source
// channel id.
func (c *Collector) fetchChannelHistory(ctx context.Context, channelID, oldest string) []slack.Message {
	var collected []slack.Message
	params := &slack.GetConversationHistoryParameters{
		ChannelID: channelID,
		Oldest:    oldest,
		Limit:     c.pageLimit,
	}

	page := 0
	for {
		if err := c.pageLimiter.Wait(ctx); err != nil {
			log.Error().Err(err).Str("channelID", channelID).Msg("Page pacing interrupted")
			return collected
		}

		page++
		history, err := c.ws.History(ctx, params)
		if err != nil {
			log.Error().
				Err(err).
				Str("channelID", channelID).
				Int("page", page).
				Msg("Error getting history for channel, keeping pages collected so far")
			return collected
		}

		for _, msg := range history.Messages {
			msg.Channel = channelID
			collected = append(collected, msg)
		}

		cursor := history.ResponseMetaData.NextCursor
		if cursor == "" {
			log.Debug().
				Str("channelID", channelID).
				Int("pages", page).
				Int("messages", len(collected)).
				Msg("Channel history collected")
			return collected
		}
		params.Cursor = cursor
	}
}

// Collect gathers the history of every channel, sequentially and in
// discovery order, waiting on the channel limiter between channels.
// Message order is channel order, then page order, then the platform's
// native order within a page; nothing is re-sorted here.
func (c *Collector) Collect(ctx context.Context, channels []slack.Channel, oldest string) []slack.Message {
	var all []slack.Message

	for _, channel := range channels {
		if err := c.channelLimiter.Wait(ctx); err != nil {
			log.Error().Err(err).Msg("Channel pacing interrupted")
			return all
		}

		messages := c.fetchChannelHistory(ctx, channel.ID, oldest)
		all = append(all, messages...)

		log.Debug().
			Str("channelID", channel.ID).
			Str("channelName", channel.Name).
			Int("messages", len(messages)).
			Msg("Channel collected")
	}

	log.Info().
		Int("channels", len(channels)).
		Int("messages", len(all)).
		Str("oldest", oldest).
		Msg("History collection completed")

	return all
}
