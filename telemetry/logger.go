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
func NewLogger(service string) *Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", service).
		Logger().
		Hook(OTELHook{})

	return &Logger{Logger: logger}
}

// WithContext returns a logger with context (for trace propagation)
func (l *Logger) WithContext(ctx context.Context) *zerolog.Logger {
	logger := l.Logger.With().Ctx(ctx).Logger()
	return &logger
}

// Convenience methods for evaluation operations

func (l *Logger) LogCheckLoaded(ctx context.Context, checkID, checkName string) {
	l.WithContext(ctx).Debug().
		Str("check_id", checkID).
		Str("check_name", checkName).
		Msg("check loaded")
}

func (l *Logger) LogEvaluationStart(ctx context.Context, checkID string, resourceCount int) {
	l.WithContext(ctx).Info().
		Str("check_id", checkID).
		Int("resources", resourceCount).
		Str("operation", "evaluate").
		Msg("starting evaluation")
}

func (l *Logger) LogEvaluationComplete(ctx context.Context, checkID string, passed, failed, errored int) {
	l.WithContext(ctx).Info().
		Str("check_id", checkID).
		Int("passed", passed).
		Int("failed", failed).
		Int("errored", errored).
		Str("operation", "evaluate").
		Msg("evaluation completed")
}

func (l *Logger) LogResourceError(ctx context.Context, checkID, resourceID string, err error) {
	l.WithContext(ctx).Warn().
		Err(err).
		Str("check_id", checkID).
		Str("resource_id", resourceID).
		Str("operation", "evaluate").
		Msg("resource evaluation errored")
}

func (l *Logger) LogCollectionLoaded(ctx context.Context, connector string, count int) {
	l.WithContext(ctx).Info().
		Str("connector", connector).
		Int("resources", count).
		Str("operation", "collect").
		Msg("collection loaded")
}
