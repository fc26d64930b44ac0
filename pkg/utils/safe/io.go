package safe

import (
	"context"
	"io"

	"github.com/secmon-lab/briareos/pkg/utils/logging"
)

// Close closes c and logs a failure with the given resource name. A nil
// closer is ignored.
func Close(ctx context.Context, name string, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.From(ctx).Warn("failed to close resource", "resource", name, "error", err.Error())
	}
}
