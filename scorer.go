package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
)

// ScoredMessage is one qualifying parent message with its engagement
// score and resolved display fields.
type ScoredMessage struct {
	Score       float64
	Message     slack.Message
	ChannelName string
	UserName    string
	Permalink   string
}

// Scorer computes weighted engagement scores for parent messages,
// fetching thread replies where the history reports any.
type Scorer struct {
	ws         Workspace
	lookups    *Lookups
	weights    Weights
	replyLimit int
}

// NewScorer wires a scorer to the workspace and a per-run lookup cache.
func NewScorer(ws Workspace, lookups *Lookups, weights Weights, replyLimit int) *Scorer {
	return &Scorer{
		ws:         ws,
		lookups:    lookups,
		weights:    weights,
		replyLimit: replyLimit,
	}
}

// isParent reports whether the message starts (or has no) thread.
// Replies inside a thread are never ranking candidates.
func isParent(m slack.Message) bool {
	return m.ThreadTimestamp == "" || m.ThreadTimestamp == m.Timestamp
}

// reactionTotal sums the platform-reported counts of every reaction on
// the message.
func reactionTotal(m slack.Message) int {
	total := 0
	for _, reaction := range m.Reactions {
		total += reaction.Count
	}
	return total
}

// engagementScore combines distinct repliers, reply count, and reaction
// volume under the configured weights.
func engagementScore(w Weights, replyUsers, replies, reactions int) float64 {
	return float64(replyUsers)*w.Users + float64(replies)*w.Replies + float64(reactions)*w.Reactions
}

// Score computes one ScoredMessage per parent message whose total score
// is positive. Name and channel lookups degrade to the unknown sentinel
// and a failed permalink leaves the entry unlinked; neither drops the
// message. A failed replies fetch aborts the whole scoring pass, which
// the orchestrator surfaces as a posted failure.
func (s *Scorer) Score(ctx context.Context, messages []slack.Message) ([]ScoredMessage, error) {
	var scored []ScoredMessage

	for _, msg := range messages {
		if !isParent(msg) || msg.Channel == "" {
			continue
		}

		reactions := reactionTotal(msg)

		replies, replyUsers := 0, 0
		if msg.ReplyCount > 0 {
			var err error
			replies, replyUsers, err = s.threadEngagement(ctx, msg.Channel, msg.Timestamp)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch replies for %s in %s: %w", msg.Timestamp, msg.Channel, err)
			}
		}

		total := engagementScore(s.weights, replyUsers, replies, reactions)
		if total == 0 {
			continue
		}

		permalink, err := s.ws.Permalink(ctx, msg.Channel, msg.Timestamp)
		if err != nil {
			log.Warn().
				Err(err).
				Str("channelID", msg.Channel).
				Str("timestamp", msg.Timestamp).
				Msg("Could not resolve permalink")
			permalink = ""
		}

		scored = append(scored, ScoredMessage{
			Score:       total,
			Message:     msg,
			ChannelName: s.lookups.ChannelName(ctx, msg.Channel),
			UserName:    s.lookups.UserName(ctx, msg.User),
			Permalink:   permalink,
		})
	}

	log.Debug().
		Int("candidates", len(messages)).
		Int("scored", len(scored)).
		Msg("Engagement scoring completed")

	return scored, nil
}

// threadEngagement fetches one capped page of the thread and returns
// the reply count and the number of distinct reply authors. The first
// entry is the parent itself and is dropped.
func (s *Scorer) threadEngagement(ctx context.Context, channelID, timestamp string) (replies, replyUsers int, err error) {
	messages, err := s.ws.Replies(ctx, &slack.GetConversationRepliesParameters{
		ChannelID: channelID,
		Timestamp: timestamp,
		Limit:     s.replyLimit,
	})
	if err != nil {
		return 0, 0, err
	}

	if len(messages) > 0 {
		messages = messages[1:]
	}

	authors := make(map[string]struct{})
	for _, reply := range messages {
		authors[reply.User] = struct{}{}
	}

	return len(messages), len(authors), nil
}
