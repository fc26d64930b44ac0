package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/briareos/pkg/domain/types"
)

func TestDraftStatus_IsValid(t *testing.T) {
	for _, s := range types.AllDraftStatuses() {
		t.Run(s.String(), func(t *testing.T) {
			gt.B(t, s.IsValid()).True()
		})
	}

	gt.B(t, types.DraftStatus("").IsValid()).False()
	gt.B(t, types.DraftStatus("ACCEPTED").IsValid()).False()
}

func TestParseDraftStatus(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    types.DraftStatus
		wantErr bool
	}{
		{name: "pending", input: "pending", want: types.DraftStatusPending},
		{name: "accepted", input: "accepted", want: types.DraftStatusAccepted},
		{name: "failed", input: "failed", want: types.DraftStatusFailed},
		{name: "unknown", input: "archived", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := types.ParseDraftStatus(tt.input)
			if tt.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err)
			gt.Value(t, got).Equal(tt.want)
		})
	}
}
