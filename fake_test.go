package main

import (
	"context"
	"sync"

	"github.com/slack-go/slack"
)

// fakeWorkspace implements Workspace with overridable behavior per
// call. Posts are recorded so tests can assert what reached the
// publisher; recording is mutex-guarded because the two ranking
// pipelines post concurrently.
type fakeWorkspace struct {
	listChannels func(ctx context.Context, types []string) ([]slack.Channel, error)
	history      func(ctx context.Context, params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error)
	replies      func(ctx context.Context, params *slack.GetConversationRepliesParameters) ([]slack.Message, error)
	userName     func(ctx context.Context, userID string) (string, error)
	channelName  func(ctx context.Context, channelID string) (string, error)
	permalink    func(ctx context.Context, channelID, timestamp string) (string, error)
	postErr      error

	mu    sync.Mutex
	posts []recordedPost
}

type recordedPost struct {
	channelID string
	text      string
	blocks    []slack.Block
}

func (f *fakeWorkspace) ListChannels(ctx context.Context, types []string) ([]slack.Channel, error) {
	if f.listChannels != nil {
		return f.listChannels(ctx, types)
	}
	return nil, nil
}

func (f *fakeWorkspace) History(ctx context.Context, params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error) {
	if f.history != nil {
		return f.history(ctx, params)
	}
	return &slack.GetConversationHistoryResponse{}, nil
}

func (f *fakeWorkspace) Replies(ctx context.Context, params *slack.GetConversationRepliesParameters) ([]slack.Message, error) {
	if f.replies != nil {
		return f.replies(ctx, params)
	}
	return nil, nil
}

func (f *fakeWorkspace) UserName(ctx context.Context, userID string) (string, error) {
	if f.userName != nil {
		return f.userName(ctx, userID)
	}
	return userID, nil
}

func (f *fakeWorkspace) ChannelName(ctx context.Context, channelID string) (string, error) {
	if f.channelName != nil {
		return f.channelName(ctx, channelID)
	}
	return channelID, nil
}

func (f *fakeWorkspace) Permalink(ctx context.Context, channelID, timestamp string) (string, error) {
	if f.permalink != nil {
		return f.permalink(ctx, channelID, timestamp)
	}
	return "https://example.slack.com/archives/" + channelID + "/p" + timestamp, nil
}

func (f *fakeWorkspace) Post(ctx context.Context, channelID, text string, blocks []slack.Block) error {
	if f.postErr != nil {
		return f.postErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, recordedPost{channelID: channelID, text: text, blocks: blocks})
	return nil
}

func (f *fakeWorkspace) recordedPosts() []recordedPost {
	f.mu.Lock()
	defer f.mu.Unlock()
	posts := make([]recordedPost, len(f.posts))
	copy(posts, f.posts)
	return posts
}

// channel builds a slack.Channel for discovery tests.
func channel(id, name string, isMember bool) slack.Channel {
	return slack.Channel{
		GroupConversation: slack.GroupConversation{
			Conversation: slack.Conversation{ID: id},
			Name:         name,
		},
		IsMember: isMember,
	}
}

// message builds a parent message with optional reactions.
func message(channelID, ts, user string, reactions ...slack.ItemReaction) slack.Message {
	return slack.Message{Msg: slack.Msg{
		Channel:   channelID,
		Timestamp: ts,
		User:      user,
		Text:      "message " + ts,
		Reactions: reactions,
	}}
}

// reply builds a message inside the thread rooted at threadTS.
func reply(channelID, ts, threadTS, user string) slack.Message {
	return slack.Message{Msg: slack.Msg{
		Channel:         channelID,
		Timestamp:       ts,
		ThreadTimestamp: threadTS,
		User:            user,
		Text:            "reply " + ts,
	}}
}

// fastConfig returns a config with pacing disabled for tests.
func fastConfig() Config {
	cfg := defaultConfig()
	cfg.PageDelayMs = 0
	cfg.ChannelDelayMs = 0
	cfg.TargetChannelID = "CTARGET"
	return cfg
}
