package main

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/slack-go/slack"
)

const (
	reactionRankingTitle   = "💥 Reaction usage ranking!"
	engagementRankingTitle = "🎉 Top engagement ranking!"

	noReactionsText   = "No reactions were used in this window :thinking_face:"
	nothingRankedText = "No standout posts in this window :zany_face:"

	excerptLimit = 80
)

// RankedReaction is a reaction tally decorated with resolved fan names
// for rendering.
type RankedReaction struct {
	ReactionTally
	FanNames []string
}

var (
	labeledLinkPattern = regexp.MustCompile(`<[^|>]+\|([^>]+)>`)
	bareLinkPattern    = regexp.MustCompile(`<([^>]+)>`)
)

// excerpt strips Slack link markup from the message text and trims it
// to a fixed display length.
func excerpt(text string) string {
	text = labeledLinkPattern.ReplaceAllString(text, "$1")
	text = bareLinkPattern.ReplaceAllString(text, "$1")

	runes := []rune(text)
	if len(runes) > excerptLimit {
		runes = runes[:excerptLimit]
	}
	return string(runes) + "..."
}

// renderReactionRanking turns the reaction slots into Block Kit. When
// no slot is filled it returns a plain text notice and nil blocks; the
// publisher still receives a post either way.
func renderReactionRanking(slots []Slot[RankedReaction]) (string, []slack.Block) {
	if filledCount(slots) == 0 {
		return noReactionsText, nil
	}

	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, reactionRankingTitle, true, false)),
		slack.NewDividerBlock(),
	}

	for i, slot := range slots {
		var text string
		if !slot.Filled {
			text = fmt.Sprintf("*%d.* no entry", i+1)
		} else {
			text = fmt.Sprintf("*%d.* :%s: (*%d* uses)", i+1, slot.Entry.Name, slot.Entry.Count)
			if len(slot.Entry.FanNames) > 0 {
				text += fmt.Sprintf("\n:point_right: most used by *%s*", strings.Join(slot.Entry.FanNames, "*, *"))
			}
		}
		blocks = append(blocks,
			slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil),
			slack.NewDividerBlock(),
		)
	}

	return reactionRankingTitle, blocks
}

// renderEngagementRanking turns the scored-message slots into Block
// Kit under the given title. Entries without a permalink fall back to
// an unlinked excerpt.
func renderEngagementRanking(title string, slots []Slot[ScoredMessage]) (string, []slack.Block) {
	if filledCount(slots) == 0 {
		return nothingRankedText, nil
	}

	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, title, true, false)),
		slack.NewDividerBlock(),
	}

	for i, slot := range slots {
		var text string
		if !slot.Filled {
			text = fmt.Sprintf("*%d.* no entry", i+1)
		} else {
			entry := slot.Entry
			quoted := excerpt(entry.Message.Text)
			if entry.Permalink != "" {
				quoted = fmt.Sprintf("*<%s|%s>*", entry.Permalink, quoted)
			}
			text = fmt.Sprintf("*%d.* (score: %.2f)\n%s\n:bust_in_silhouette: *%s* | :slack: #%s",
				i+1, entry.Score, quoted, entry.UserName, entry.ChannelName)
		}
		blocks = append(blocks,
			slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil),
			slack.NewDividerBlock(),
		)
	}

	return title, blocks
}

// renderFailure names a failed pipeline for the user-visible error post.
func renderFailure(what string, err error) string {
	return fmt.Sprintf("Something went wrong while building the %s: %v", what, err)
}
