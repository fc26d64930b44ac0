package tool

import "context"

// ProgressFunc receives status lines emitted by a support tool while it runs
type ProgressFunc func(ctx context.Context, message string)

type progressKey struct{}

func WithProgress(ctx context.Context, fn ProgressFunc) context.Context {
	return context.WithValue(ctx, progressKey{}, fn)
}

// Progress reports message to the ProgressFunc in ctx. No-op without one.
func Progress(ctx context.Context, message string) {
	if fn, ok := ctx.Value(progressKey{}).(ProgressFunc); ok && fn != nil {
		fn(ctx, message)
	}
}
