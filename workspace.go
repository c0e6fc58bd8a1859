package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
)

// Workspace is the surface of the Slack API the ranking core consumes.
// The orchestrator and collectors depend on this interface so tests can
// substitute a fake workspace.
type Workspace interface {
	ListChannels(ctx context.Context, types []string) ([]slack.Channel, error)
	History(ctx context.Context, params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error)
	Replies(ctx context.Context, params *slack.GetConversationRepliesParameters) ([]slack.Message, error)
	UserName(ctx context.Context, userID string) (string, error)
	ChannelName(ctx context.Context, channelID string) (string, error)
	Permalink(ctx context.Context, channelID, timestamp string) (string, error)
	Post(ctx context.Context, channelID, text string, blocks []slack.Block) error
}

// slackLogAdapter adapts zerolog to slack-go's log interface
type slackLogAdapter struct {
	logger zerolog.Logger
}

func (a *slackLogAdapter) Output(calldepth int, s string) error {
	a.logger.Debug().Msg(s)
	return nil
}

// slackWorkspace implements Workspace on top of a slack-go client.
type slackWorkspace struct {
	client *slack.Client
}

// newSlackWorkspace builds the client and verifies the token with an
// auth test before any collection starts.
func newSlackWorkspace(token string) (*slackWorkspace, error) {
	slackLogger := &slackLogAdapter{
		logger: log.With().Str("component", "slack-api").Logger(),
	}

	client := slack.New(
		token,
		slack.OptionLog(slackLogger),
	)

	log.Debug().Msg("Testing authentication with Slack")
	authTest, err := client.AuthTest()
	if err != nil {
		log.Error().Err(err).Msg("Authentication test failed")
		return nil, fmt.Errorf("auth test failed: %w", err)
	}

	log.Info().
		Str("user", authTest.User).
		Str("userID", authTest.UserID).
		Str("team", authTest.Team).
		Msg("Connected to Slack")

	return &slackWorkspace{client: client}, nil
}

// ListChannels returns every non-archived conversation of the given
// kinds, following the pagination cursor until exhausted.
func (w *slackWorkspace) ListChannels(ctx context.Context, types []string) ([]slack.Channel, error) {
	var all []slack.Channel
	params := &slack.GetConversationsParameters{
		Types:           types,
		Limit:           1000,
		ExcludeArchived: true,
	}

	for {
		channels, nextCursor, err := w.client.GetConversationsContext(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("failed to list channels: %w", err)
		}
		all = append(all, channels...)

		if nextCursor == "" {
			return all, nil
		}
		log.Debug().Str("cursor", nextCursor).Msg("Fetching additional channels")
		params.Cursor = nextCursor
	}
}

func (w *slackWorkspace) History(ctx context.Context, params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error) {
	return w.client.GetConversationHistoryContext(ctx, params)
}

// Replies fetches one capped page of a thread. The first entry is the
// parent message, re-returned by the API; callers drop it.
func (w *slackWorkspace) Replies(ctx context.Context, params *slack.GetConversationRepliesParameters) ([]slack.Message, error) {
	messages, _, _, err := w.client.GetConversationRepliesContext(ctx, params)
	return messages, err
}

// UserName resolves a user id to its best display name, preferring
// the profile display name over the real name over the login name.
func (w *slackWorkspace) UserName(ctx context.Context, userID string) (string, error) {
	user, err := w.client.GetUserInfoContext(ctx, userID)
	if err != nil {
		return "", err
	}
	switch {
	case user.Profile.DisplayName != "":
		return user.Profile.DisplayName, nil
	case user.RealName != "":
		return user.RealName, nil
	case user.Name != "":
		return user.Name, nil
	}
	return user.ID, nil
}

func (w *slackWorkspace) ChannelName(ctx context.Context, channelID string) (string, error) {
	channel, err := w.client.GetConversationInfoContext(ctx, &slack.GetConversationInfoInput{
		ChannelID: channelID,
	})
	if err != nil {
		return "", err
	}
	return channel.Name, nil
}

func (w *slackWorkspace) Permalink(ctx context.Context, channelID, timestamp string) (string, error) {
	return w.client.GetPermalinkContext(ctx, &slack.PermalinkParameters{
		Channel: channelID,
		Ts:      timestamp,
	})
}

// Post publishes a ranking (or failure notice) to the target channel.
// Blocks are optional; the text doubles as the notification fallback.
func (w *slackWorkspace) Post(ctx context.Context, channelID, text string, blocks []slack.Block) error {
	options := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if len(blocks) > 0 {
		options = append(options, slack.MsgOptionBlocks(blocks...))
	}

	_, timestamp, err := w.client.PostMessageContext(ctx, channelID, options...)
	if err != nil {
		return err
	}
	log.Debug().
		Str("channelID", channelID).
		Str("timestamp", timestamp).
		Msg("Message posted")
	return nil
}
