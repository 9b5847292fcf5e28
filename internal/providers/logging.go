package providers

import (
	"context"
	"log/slog"

	"github.com/preston-bernstein/football-data-service/internal/logging"
)

// logUpstream tags entries with the upstream component that emitted them.
func logUpstream(ctx context.Context, logger *slog.Logger, level slog.Level, component string, msg string, args ...any) {
	if logger == nil {
		return
	}
	args = append(args, slog.String(logging.FieldProvider, component))
	logger.Log(ctx, level, msg, args...)
}
