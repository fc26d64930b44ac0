package async_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/briareos/pkg/utils/async"
)

type ctxKey struct{}

func TestDispatch(t *testing.T) {
	t.Run("runs detached from cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.WithValue(context.Background(), ctxKey{}, "v"))
		cancel()

		done := make(chan error, 1)
		async.Dispatch(ctx, "test", func(ctx context.Context) error {
			gt.Value(t, ctx.Value(ctxKey{})).Equal(any("v"))
			done <- ctx.Err()
			return nil
		})

		select {
		case err := <-done:
			gt.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("handler did not run")
		}
	})

	t.Run("absorbs errors and panics", func(t *testing.T) {
		done := make(chan struct{}, 2)
		async.Dispatch(context.Background(), "failing", func(ctx context.Context) error {
			defer func() { done <- struct{}{} }()
			return errors.New("boom")
		})
		async.Dispatch(context.Background(), "panicking", func(ctx context.Context) error {
			defer func() { done <- struct{}{} }()
			panic("boom")
		})

		for range 2 {
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("handler did not run")
			}
		}
	})
}
