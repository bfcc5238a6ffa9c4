// Package telemetry provides structured logging and OpenTelemetry
// instrumentation for the scanner.
package telemetry

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTELHook adds trace and span IDs to every log entry
type OTELHook struct{}

func (h OTELHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return
	}

	e.Str("trace_id", span.SpanContext().TraceID().String())
	e.Str("span_id", span.SpanContext().SpanID().String())

	if level == zerolog.ErrorLevel {
		span.SetStatus(codes.Error, msg)
	}
}

// Logger wraps zerolog with OTEL integration
type Logger struct {
	zerolog.Logger
}

// NewLogger creates a new logger with OTEL hooks
func NewLogger(component string) *Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	logger := zerolog.New(os.Stderr).
		With().
		Timestamp().
		Str("component", component).
		Logger().
		Hook(OTELHook{})

	return &Logger{Logger: logger}
}

// WithContext returns a logger with context (for trace propagation)
func (l *Logger) WithContext(ctx context.Context) *zerolog.Logger {
	logger := l.Logger.With().Ctx(ctx).Logger()
	return &logger
}

// LogTemplateError logs a template load or parse failure.
func (l *Logger) LogTemplateError(ctx context.Context, path string, err error) {
	l.WithContext(ctx).Error().
		Err(err).
		Str("template", path).
		Msg("template processing failed")
}

// LogVerdict logs one evaluation outcome at debug level.
func (l *Logger) LogVerdict(ctx context.Context, ruleID, logicalID, verdict string) {
	l.WithContext(ctx).Debug().
		Str("rule_id", ruleID).
		Str("resource", logicalID).
		Str("verdict", verdict).
		Msg("rule evaluated")
}
