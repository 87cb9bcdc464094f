// Package safe provides I/O helpers that log failures instead of dropping
// them in defer statements.
package safe

import (
	"context"
	"io"
	"log/slog"

	"github.com/kagami-lab/kagami/pkg/utils/logging"
)

// Close safely closes an io.Closer and logs any errors.
// It handles nil closers gracefully.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Error("Failed to close", slog.Any("error", err))
	}
}
