package slack

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/domain/types"
	"github.com/slack-go/slack"
)

// maxSectionBytes stays below the 3000 character limit of a section block
const maxSectionBytes = 2900

// Notifier posts a message to one channel for every stored draft
type Notifier struct {
	svc     Service
	channel string
}

func NewNotifier(svc Service, channel string) *Notifier {
	return &Notifier{
		svc:     svc,
		channel: channel,
	}
}

// NotifyDraft implements interfaces.DraftNotifier
func (n *Notifier) NotifyDraft(ctx context.Context, ticket *model.Ticket, customer *model.Customer, draft *model.Draft) error {
	channelID, err := n.svc.ResolveChannelID(ctx, n.channel)
	if err != nil {
		return goerr.Wrap(err, "failed to resolve notification channel", goerr.V("channel", n.channel))
	}

	blocks := buildDraftBlocks(ticket, customer, draft)
	text := fmt.Sprintf("Draft %s for ticket #%d: %s", draft.Status, ticket.ID, ticket.Subject)
	if _, err := n.svc.PostMessage(ctx, channelID, blocks, text); err != nil {
		return goerr.Wrap(err, "failed to post draft notification",
			goerr.V("ticket_id", ticket.ID),
			goerr.V("draft_id", draft.ID),
		)
	}
	return nil
}

func statusEmoji(status types.DraftStatus) string {
	switch status {
	case types.DraftStatusFailed:
		return ":x:"
	case types.DraftStatusAccepted:
		return ":white_check_mark:"
	case types.DraftStatusDiscarded:
		return ":wastebasket:"
	default:
		return ":memo:"
	}
}

func buildDraftBlocks(ticket *model.Ticket, customer *model.Customer, draft *model.Draft) []slack.Block {
	header := fmt.Sprintf("%s Draft for ticket #%d", statusEmoji(draft.Status), ticket.ID)
	blocks := []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*%s*\n%s", header, ticket.Subject), false, false),
			[]*slack.TextBlockObject{
				slack.NewTextBlockObject(slack.MarkdownType, "*Customer*\n"+customer.DisplayName(), false, false),
				slack.NewTextBlockObject(slack.MarkdownType, "*Priority*\n"+ticket.Priority.String(), false, false),
				slack.NewTextBlockObject(slack.MarkdownType, "*Status*\n"+draft.Status.String(), false, false),
			},
			nil,
		),
		slack.NewDividerBlock(),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, truncateToMaxBytes(draft.Content, maxSectionBytes), false, false),
			nil, nil,
		),
	}

	if note := degradedNote(draft); note != "" {
		blocks = append(blocks, slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType, note, false, false),
		))
	}
	return blocks
}

// degradedNote describes why a draft did not come from the agent tier
func degradedNote(draft *model.Draft) string {
	sc := draft.ContextUsed
	if sc == nil {
		return ""
	}
	if draft.Status == types.DraftStatusFailed {
		if len(sc.Errors) > 0 {
			return ":warning: " + sc.Errors[0]
		}
		return ":warning: generation failed"
	}
	if sc.Tier != "" && sc.Tier != types.GenerationTierAgent.String() {
		return fmt.Sprintf(":warning: generated by the %s fallback (%d diagnostics)", sc.Tier, len(sc.Errors))
	}
	return ""
}

// truncateToMaxBytes cuts s to at most maxBytes without splitting a rune
func truncateToMaxBytes(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	const ellipsis = "..."
	cut := maxBytes - len(ellipsis)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + ellipsis
}
