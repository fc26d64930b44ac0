package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/briareos/pkg/domain/types"
)

func TestTicketStatus_Normalize(t *testing.T) {
	gt.Value(t, types.TicketStatus("").Normalize()).Equal(types.TicketStatusOpen)
	gt.Value(t, types.TicketStatusResolved.Normalize()).Equal(types.TicketStatusResolved)
}

func TestParseTicketStatus(t *testing.T) {
	for _, s := range types.AllTicketStatuses() {
		got, err := types.ParseTicketStatus(s.String())
		gt.NoError(t, err)
		gt.Value(t, got).Equal(s)
	}

	_, err := types.ParseTicketStatus("pending")
	gt.Error(t, err)
}

func TestTicketPriority(t *testing.T) {
	t.Run("empty defaults to medium", func(t *testing.T) {
		gt.Value(t, types.TicketPriority("").Normalize()).Equal(types.TicketPriorityMedium)
	})

	t.Run("parse valid priorities", func(t *testing.T) {
		for _, p := range types.AllTicketPriorities() {
			got, err := types.ParseTicketPriority(p.String())
			gt.NoError(t, err)
			gt.Value(t, got).Equal(p)
		}
	})

	t.Run("reject unknown priority", func(t *testing.T) {
		_, err := types.ParseTicketPriority("critical")
		gt.Error(t, err)
	})
}

func TestTaskStatus_IsFinished(t *testing.T) {
	gt.B(t, types.TaskStatusQueued.IsFinished()).False()
	gt.B(t, types.TaskStatusRunning.IsFinished()).False()
	gt.B(t, types.TaskStatusSucceeded.IsFinished()).True()
	gt.B(t, types.TaskStatusFailed.IsFinished()).True()
}
