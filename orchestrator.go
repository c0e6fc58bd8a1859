package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
)

const digestRankingTitle = "🎉 Daily engagement digest!"

// Runner sequences discovery, collection, aggregation, scoring, and
// ranking, and hands every result (or failure) to the publisher. No
// failure below this level crashes the process: channels degrade to
// empty page sets, lookups degrade to sentinels, and pipeline errors
// become a user-visible post.
type Runner struct {
	ws    Workspace
	cfg   Config
	enlog *EngagementLog
}

// NewRunner creates a runner for one configuration.
func NewRunner(ws Workspace, cfg Config) *Runner {
	return &Runner{
		ws:    ws,
		cfg:   cfg,
		enlog: NewEngagementLog(cfg.LogDir),
	}
}

// slackTimestamp renders a time as the seconds.micros string the
// history API expects for oldest/latest bounds.
func slackTimestamp(t time.Time) string {
	return fmt.Sprintf("%d.000000", t.Unix())
}

// RunRankings performs one collection pass over the lookback window and
// derives both rankings from the shared snapshot. The two pipelines run
// concurrently: they are read-only consumers of the same immutable
// message set, sharing only the mutex-guarded lookup cache.
func (r *Runner) RunRankings(ctx context.Context) error {
	runID := uuid.NewString()
	logger := log.With().Str("runID", runID).Logger()
	logger.Info().Int("lookbackHours", r.cfg.LookbackHours).Msg("Starting ranking run")

	collector := NewCollector(r.ws, r.cfg)
	channels, err := collector.ListTargetChannels(ctx)
	if err != nil {
		r.postFailure(ctx, logger, "activity ranking", err)
		return fmt.Errorf("channel discovery failed: %w", err)
	}

	oldest := slackTimestamp(time.Now().Add(-r.cfg.Lookback()))
	messages := collector.Collect(ctx, channels, oldest)

	lookups := NewLookups(r.ws)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		r.runReactionPipeline(ctx, logger, lookups, messages)
	}()
	go func() {
		defer wg.Done()
		r.runEngagementPipeline(ctx, logger, lookups, messages)
	}()
	wg.Wait()

	logger.Info().Msg("Ranking run completed")
	return nil
}

// runReactionPipeline aggregates reaction usage and posts the top-N
// reaction ranking.
func (r *Runner) runReactionPipeline(ctx context.Context, logger zerolog.Logger, lookups *Lookups, messages []slack.Message) {
	defer func() {
		if p := recover(); p != nil {
			r.postFailure(ctx, logger, "reaction ranking", fmt.Errorf("%v", p))
		}
	}()

	tallies := AggregateReactions(messages)
	slots := RankTop(tallies, r.cfg.RankLimit, func(t ReactionTally) float64 {
		return float64(t.Count)
	})

	ranked := make([]Slot[RankedReaction], len(slots))
	for i, slot := range slots {
		if !slot.Filled {
			continue
		}
		var fans []string
		for _, userID := range slot.Entry.TopUsers(r.cfg.FanUserLimit) {
			if name := lookups.UserName(ctx, userID); name != unknownName {
				fans = append(fans, name)
			}
		}
		ranked[i] = Slot[RankedReaction]{
			Entry:  RankedReaction{ReactionTally: slot.Entry, FanNames: fans},
			Filled: true,
		}
	}

	logger.Info().
		Int("reactions", len(tallies)).
		Int("ranked", filledCount(ranked)).
		Msg("Reaction ranking built")

	text, blocks := renderReactionRanking(ranked)
	r.post(ctx, logger, text, blocks)
}

// runEngagementPipeline scores parent messages and posts the top-N
// engagement ranking. A scoring failure becomes a posted error message.
func (r *Runner) runEngagementPipeline(ctx context.Context, logger zerolog.Logger, lookups *Lookups, messages []slack.Message) {
	defer func() {
		if p := recover(); p != nil {
			r.postFailure(ctx, logger, "engagement ranking", fmt.Errorf("%v", p))
		}
	}()

	scorer := NewScorer(r.ws, lookups, r.cfg.Weights, r.cfg.ReplyPageLimit)
	scored, err := scorer.Score(ctx, messages)
	if err != nil {
		r.postFailure(ctx, logger, "engagement ranking", err)
		return
	}

	slots := RankTop(scored, r.cfg.RankLimit, func(m ScoredMessage) float64 {
		return m.Score
	})

	logger.Info().
		Int("scored", len(scored)).
		Int("ranked", filledCount(slots)).
		Msg("Engagement ranking built")

	text, blocks := renderEngagementRanking(engagementRankingTitle, slots)
	r.post(ctx, logger, text, blocks)
}

// RunCollect gathers one tick's worth of parent-message engagement and
// appends it to the dated CSV log. Nothing is posted.
func (r *Runner) RunCollect(ctx context.Context) error {
	runID := uuid.NewString()
	logger := log.With().Str("runID", runID).Logger()
	logger.Info().Int("lookbackMinutes", r.cfg.CollectLookbackMinutes).Msg("Starting collect tick")

	collector := NewCollector(r.ws, r.cfg)
	channels, err := collector.ListTargetChannels(ctx)
	if err != nil {
		return fmt.Errorf("channel discovery failed: %w", err)
	}

	oldest := slackTimestamp(time.Now().Add(-r.cfg.CollectLookback()))
	messages := collector.Collect(ctx, channels, oldest)

	scorer := NewScorer(r.ws, NewLookups(r.ws), r.cfg.Weights, r.cfg.ReplyPageLimit)

	var rows []EngagementRow
	for _, msg := range messages {
		if !isParent(msg) || msg.Channel == "" {
			continue
		}

		reactions := reactionTotal(msg)
		replies, replyUsers := 0, 0
		if msg.ReplyCount > 0 {
			replies, replyUsers, err = scorer.threadEngagement(ctx, msg.Channel, msg.Timestamp)
			if err != nil {
				logger.Warn().
					Err(err).
					Str("channelID", msg.Channel).
					Str("timestamp", msg.Timestamp).
					Msg("Skipping message, could not fetch thread")
				continue
			}
		}

		if reactions == 0 && replies == 0 {
			continue
		}
		rows = append(rows, EngagementRow{
			LoggedAt:       time.Now(),
			RunID:          runID,
			MessageTS:      msg.Timestamp,
			ChannelID:      msg.Channel,
			UserID:         msg.User,
			ReactionCount:  reactions,
			ReplyCount:     replies,
			ReplyUserCount: replyUsers,
		})
	}

	if err := r.enlog.Append(rows); err != nil {
		return err
	}

	logger.Info().Int("messages", len(messages)).Int("logged", len(rows)).Msg("Collect tick completed")
	return nil
}

// RunDigest ranks today's engagement log under the digest weights and
// posts the result, then marks the log processed. A missing log file
// skips the post.
func (r *Runner) RunDigest(ctx context.Context) error {
	runID := uuid.NewString()
	logger := log.With().Str("runID", runID).Logger()

	day := time.Now()
	rows, err := r.enlog.Load(day)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info().Msg("No engagement log for today, skipping digest")
			return nil
		}
		r.postFailure(ctx, logger, "daily digest", err)
		return err
	}

	logger.Info().Int("messages", len(rows)).Msg("Building digest from engagement log")

	// Map order is random; rank ties must stay deterministic.
	timestamps := make([]string, 0, len(rows))
	for ts := range rows {
		timestamps = append(timestamps, ts)
	}
	sort.Strings(timestamps)

	lookups := NewLookups(r.ws)
	var scored []ScoredMessage
	for _, ts := range timestamps {
		row := rows[ts]
		total := engagementScore(r.cfg.DigestWeights, row.ReplyUserCount, row.ReplyCount, row.ReactionCount)
		if total == 0 {
			continue
		}

		permalink, err := r.ws.Permalink(ctx, row.ChannelID, row.MessageTS)
		if err != nil {
			logger.Warn().Err(err).Str("timestamp", row.MessageTS).Msg("Could not resolve permalink")
			permalink = ""
		}

		scored = append(scored, ScoredMessage{
			Score: total,
			Message: slack.Message{Msg: slack.Msg{
				Timestamp: row.MessageTS,
				Channel:   row.ChannelID,
				User:      row.UserID,
				Text:      r.messageText(ctx, logger, row.ChannelID, row.MessageTS),
			}},
			ChannelName: lookups.ChannelName(ctx, row.ChannelID),
			UserName:    lookups.UserName(ctx, row.UserID),
			Permalink:   permalink,
		})
	}

	slots := RankTop(scored, r.cfg.RankLimit, func(m ScoredMessage) float64 {
		return m.Score
	})

	text, blocks := renderEngagementRanking(digestRankingTitle, slots)
	r.post(ctx, logger, text, blocks)

	if err := r.enlog.MarkProcessed(day); err != nil {
		logger.Error().Err(err).Msg("Failed to mark engagement log processed")
	}

	logger.Info().Int("ranked", filledCount(slots)).Msg("Digest completed")
	return nil
}

// messageText re-fetches one message's body for display. The log keeps
// only counts, not text.
func (r *Runner) messageText(ctx context.Context, logger zerolog.Logger, channelID, timestamp string) string {
	history, err := r.ws.History(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: channelID,
		Oldest:    timestamp,
		Latest:    timestamp,
		Inclusive: true,
		Limit:     1,
	})
	if err != nil || len(history.Messages) == 0 {
		logger.Warn().Err(err).Str("timestamp", timestamp).Msg("Could not fetch message text")
		return "(message unavailable)"
	}
	return history.Messages[0].Text
}

// post publishes to the target channel; a publisher failure is logged,
// not retried.
func (r *Runner) post(ctx context.Context, logger zerolog.Logger, text string, blocks []slack.Block) {
	if err := r.ws.Post(ctx, r.cfg.TargetChannelID, text, blocks); err != nil {
		logger.Error().
			Err(err).
			Str("targetChannelID", r.cfg.TargetChannelID).
			Msg("Error posting ranking to channel")
	}
}

// postFailure surfaces a pipeline failure to the target channel so a
// broken run is never a silent one.
func (r *Runner) postFailure(ctx context.Context, logger zerolog.Logger, what string, err error) {
	logger.Error().Err(err).Str("pipeline", what).Msg("Pipeline failed")
	r.post(ctx, logger, renderFailure(what, err), nil)
}
