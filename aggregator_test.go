package main

import (
	"reflect"
	"testing"

	"github.com/slack-go/slack"
)

func TestAggregateReactions_MergesAcrossMessages(t *testing.T) {
	messages := []slack.Message{
		message("C1", "1.000001", "u9", slack.ItemReaction{Name: "thumbsup", Count: 3, Users: []string{"u1", "u2"}}),
		message("C2", "2.000002", "u9", slack.ItemReaction{Name: "thumbsup", Count: 2, Users: []string{"u1"}}),
	}

	tallies := AggregateReactions(messages)
	if len(tallies) != 1 {
		t.Fatalf("AggregateReactions() returned %d tallies, want 1", len(tallies))
	}

	got := tallies[0]
	if got.Name != "thumbsup" || got.Count != 5 {
		t.Errorf("tally = %q/%d, want thumbsup/5", got.Name, got.Count)
	}
	wantUsers := map[string]int{"u1": 2, "u2": 1}
	if !reflect.DeepEqual(got.UserCounts, wantUsers) {
		t.Errorf("UserCounts = %v, want %v", got.UserCounts, wantUsers)
	}
}

func TestAggregateReactions_OrderInsensitive(t *testing.T) {
	forward := []slack.Message{
		message("C1", "1.000001", "u9",
			slack.ItemReaction{Name: "eyes", Count: 1, Users: []string{"u3"}},
			slack.ItemReaction{Name: "thumbsup", Count: 3, Users: []string{"u1", "u2"}},
		),
		message("C2", "2.000002", "u9", slack.ItemReaction{Name: "thumbsup", Count: 2, Users: []string{"u1"}}),
		message("C1", "3.000003", "u9", slack.ItemReaction{Name: "eyes", Count: 4, Users: []string{"u3", "u1"}}),
	}
	reversed := []slack.Message{forward[2], forward[1], forward[0]}

	if got, want := AggregateReactions(reversed), AggregateReactions(forward); !reflect.DeepEqual(got, want) {
		t.Errorf("permuted input changed the aggregate:\ngot  %v\nwant %v", got, want)
	}
}

func TestAggregateReactions_CountConservation(t *testing.T) {
	messages := []slack.Message{
		message("C1", "1.000001", "u9",
			slack.ItemReaction{Name: "wave", Count: 7},
			slack.ItemReaction{Name: "fire", Count: 2},
		),
		message("C1", "2.000002", "u9", slack.ItemReaction{Name: "wave", Count: 4}),
		message("C2", "3.000003", "u9"),
	}

	inputTotal := 0
	for _, msg := range messages {
		inputTotal += reactionTotal(msg)
	}

	aggregatedTotal := 0
	for _, tally := range AggregateReactions(messages) {
		aggregatedTotal += tally.Count
	}

	if aggregatedTotal != inputTotal {
		t.Errorf("aggregated total = %d, want %d", aggregatedTotal, inputTotal)
	}
}

func TestAggregateReactions_NoReactions(t *testing.T) {
	messages := []slack.Message{
		message("C1", "1.000001", "u9"),
		message("C2", "2.000002", "u8"),
	}

	if tallies := AggregateReactions(messages); len(tallies) != 0 {
		t.Errorf("AggregateReactions() = %v, want empty", tallies)
	}
}

func TestReactionTally_TopUsers(t *testing.T) {
	tally := ReactionTally{
		Name:       "thumbsup",
		Count:      10,
		UserCounts: map[string]int{"u1": 3, "u2": 1, "u3": 3, "u4": 2},
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{name: "top one", limit: 1, want: []string{"u1"}},
		{name: "ties break by id", limit: 3, want: []string{"u1", "u3", "u4"}},
		{name: "limit beyond size", limit: 10, want: []string{"u1", "u3", "u4", "u2"}},
		{name: "zero limit", limit: 0, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tally.TopUsers(tt.limit); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TopUsers(%d) = %v, want %v", tt.limit, got, tt.want)
			}
		})
	}
}
