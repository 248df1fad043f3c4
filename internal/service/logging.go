package service

import (
	"context"

	"github.com/rs/zerolog"
)

// loggerFrom prefers the request or run scoped logger stored in ctx.
func loggerFrom(ctx context.Context, fallback zerolog.Logger) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &fallback
}
