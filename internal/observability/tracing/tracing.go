package tracing

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// InjectTraceID attaches a logger carrying a fresh trace id and the
// monitored channel to ctx.
func InjectTraceID(ctx context.Context, channel string) context.Context {
	id := uuid.New().String()
	logger := log.With().Str("traceId", id).Str("channel", channel).Logger()
	return logger.WithContext(ctx)
}
