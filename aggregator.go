package main

import (
	"sort"

	"github.com/slack-go/slack"
)

// ReactionTally is one emoji's usage merged across every message in the
// collection window.
type ReactionTally struct {
	Name  string
	Count int
	// UserCounts tallies +1 per occurrence of a user id in a message's
	// reaction user sample. The platform may truncate that sample below
	// Count, so this undercounts heavy use; the ranking has always been
	// computed on the sample and stays that way.
	UserCounts map[string]int
}

// TopUsers returns up to limit user ids ordered by their tally,
// descending. Equal tallies order by id so the result is deterministic.
func (t ReactionTally) TopUsers(limit int) []string {
	users := make([]string, 0, len(t.UserCounts))
	for id := range t.UserCounts {
		users = append(users, id)
	}
	sort.Slice(users, func(i, j int) bool {
		if t.UserCounts[users[i]] != t.UserCounts[users[j]] {
			return t.UserCounts[users[i]] > t.UserCounts[users[j]]
		}
		return users[i] < users[j]
	})
	if limit >= 0 && len(users) > limit {
		users = users[:limit]
	}
	return users
}

// AggregateReactions reduces the messages' raw reactions into one tally
// per emoji name. Count accumulates the platform-reported totals and
// UserCounts accumulates occurrences. The merge is commutative and
// associative, so any input order produces the same tallies; the result
// is materialized sorted by name to keep downstream stable sorts
// reproducible.
func AggregateReactions(messages []slack.Message) []ReactionTally {
	byName := make(map[string]*ReactionTally)

	for _, msg := range messages {
		for _, reaction := range msg.Reactions {
			if reaction.Name == "" {
				continue
			}
			tally, ok := byName[reaction.Name]
			if !ok {
				tally = &ReactionTally{
					Name:       reaction.Name,
					UserCounts: make(map[string]int),
				}
				byName[reaction.Name] = tally
			}
			tally.Count += reaction.Count
			for _, userID := range reaction.Users {
				tally.UserCounts[userID]++
			}
		}
	}

	tallies := make([]ReactionTally, 0, len(byName))
	for _, tally := range byName {
		tallies = append(tallies, *tally)
	}
	sort.Slice(tallies, func(i, j int) bool {
		return tallies[i].Name < tallies[j].Name
	})

	return tallies
}
