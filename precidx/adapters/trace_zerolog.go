package adapters

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/precidx/precidx/precidx/ports"
)

type spanLoggerKey struct{}

// ZerologTracer implements the Tracer port on top of zerolog.
type ZerologTracer struct {
	logger zerolog.Logger
}

// NewZerologTracer creates a tracer writing spans through the given logger.
func NewZerologTracer(logger zerolog.Logger) *ZerologTracer {
	return &ZerologTracer{logger: logger}
}

// StartSpan opens a span and returns a finish function that logs its outcome
// and duration.
func (t *ZerologTracer) StartSpan(ctx context.Context, name string, attrs map[string]any) (context.Context, func(err error)) {
	spanLogger := t.logger.With().Str("span", name).Logger()
	for k, v := range attrs {
		spanLogger = spanLogger.With().Interface(k, v).Logger()
	}

	ctx = context.WithValue(ctx, spanLoggerKey{}, spanLogger)
	start := time.Now()

	spanLogger.Debug().Msg("span start")

	finish := func(err error) {
		event := spanLogger.Debug()
		if err != nil {
			event = spanLogger.Error().Err(err)
		}
		event.Dur("duration", time.Since(start)).Msg("span end")
	}
	return ctx, finish
}

// Event logs a point-in-time event within the current span, falling back to
// the root logger outside of any span.
func (t *ZerologTracer) Event(ctx context.Context, name string, attrs map[string]any) {
	logger := t.logger
	if spanLogger, ok := ctx.Value(spanLoggerKey{}).(zerolog.Logger); ok {
		logger = spanLogger
	}

	event := logger.Info()
	for k, v := range attrs {
		event = event.Interface(k, v)
	}
	event.Str("event", name).Msg("")
}

var _ ports.Tracer = (*ZerologTracer)(nil)

// NopTracer discards all spans and events.
type NopTracer struct{}

func (NopTracer) StartSpan(ctx context.Context, name string, attrs map[string]any) (context.Context, func(err error)) {
	return ctx, func(error) {}
}

func (NopTracer) Event(ctx context.Context, name string, attrs map[string]any) {}

var _ ports.Tracer = NopTracer{}
