package main

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// unknownName is the fallback for any lookup that cannot be resolved.
const unknownName = "unknown"

// Lookups memoizes user and channel name resolution for the lifetime of
// one run. A failed lookup resolves to the unknown sentinel and is
// cached as such, so a bad id costs at most one API call per run. The
// two ranking pipelines may share one instance; the mutex is held
// across the fetch so a shared id is resolved exactly once.
type Lookups struct {
	ws Workspace

	mu       sync.Mutex
	users    map[string]string
	channels map[string]string
}

// NewLookups creates an empty cache scoped to one orchestrator
// invocation. State is never persisted between runs.
func NewLookups(ws Workspace) *Lookups {
	return &Lookups{
		ws:       ws,
		users:    make(map[string]string),
		channels: make(map[string]string),
	}
}

// UserName resolves a user id to a display name, or the unknown
// sentinel when the id is empty or the lookup fails.
func (l *Lookups) UserName(ctx context.Context, userID string) string {
	if userID == "" {
		return unknownName
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if name, ok := l.users[userID]; ok {
		return name
	}

	name, err := l.ws.UserName(ctx, userID)
	if err != nil || name == "" {
		log.Warn().Err(err).Str("userID", userID).Msg("Could not resolve user name")
		name = unknownName
	}
	l.users[userID] = name
	return name
}

// ChannelName resolves a channel id to its name, or the unknown
// sentinel when the lookup fails.
func (l *Lookups) ChannelName(ctx context.Context, channelID string) string {
	if channelID == "" {
		return unknownName
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if name, ok := l.channels[channelID]; ok {
		return name
	}

	name, err := l.ws.ChannelName(ctx, channelID)
	if err != nil || name == "" {
		log.Warn().Err(err).Str("channelID", channelID).Msg("Could not resolve channel name")
		name = unknownName
	}
	l.channels[channelID] = name
	return name
}
