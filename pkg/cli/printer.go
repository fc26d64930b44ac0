package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/domain/types"
)

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	labelColor   = color.New(color.FgHiBlack)
	warningColor = color.New(color.FgYellow)
	failedColor  = color.New(color.FgRed, color.Bold)
	okColor      = color.New(color.FgGreen)
)

// printDraft writes a draft and a summary of its evidence for terminal use
func printDraft(w io.Writer, ticket *model.TicketWithCustomer, draft *model.Draft) {
	headerColor.Fprintf(w, "Ticket #%d: %s\n", ticket.Ticket.ID, ticket.Ticket.Subject)
	if ticket.Customer != nil {
		labelColor.Fprintf(w, "Customer: %s <%s>  ", ticket.Customer.DisplayName(), ticket.Customer.Email)
	}
	labelColor.Fprintf(w, "Priority: %s\n", ticket.Ticket.Priority)
	fmt.Fprintln(w)

	statusColor := okColor
	if draft.Status == types.DraftStatusFailed {
		statusColor = failedColor
	}
	statusColor.Fprintf(w, "Draft #%d [%s]\n", draft.ID, draft.Status)
	fmt.Fprintln(w, strings.TrimSpace(draft.Content))

	sc := draft.ContextUsed
	if sc == nil {
		return
	}

	fmt.Fprintln(w)
	headerColor.Fprintln(w, "Evidence")
	labelColor.Fprintf(w, "tier=%s memory=%d knowledge=%d tools=%d tool_errors=%d\n",
		orNone(sc.Tier),
		sc.Signals.MemoryHitCount,
		sc.Signals.KnowledgeHitCount,
		sc.Signals.ToolCallCount,
		sc.Signals.ToolErrorCount,
	)
	printSection(w, "Memory", sc.Highlights.Memory)
	printSection(w, "Knowledge", sc.Highlights.Knowledge)
	printSection(w, "Tools", sc.Highlights.Tools)

	for _, msg := range sc.Errors {
		warningColor.Fprintf(w, "! %s\n", msg)
	}
}

func printSection(w io.Writer, title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	labelColor.Fprintf(w, "%s:\n", title)
	for _, line := range lines {
		fmt.Fprintf(w, "  - %s\n", line)
	}
}

func printIngestResult(w io.Writer, location string, result *model.IngestResult) {
	okColor.Fprintf(w, "Indexed %s\n", location)
	labelColor.Fprintf(w, "files=%d chunks=%d collection=%d\n",
		result.FilesIndexed, result.ChunksIndexed, result.CollectionCount)
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
