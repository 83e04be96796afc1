// Package telemetry wraps the OpenTelemetry tracer and meter cypher-guard
// uses to instrument validation calls, adapted from the teacher driver's
// query-span pattern (src/driver/observability.go) to a static analyzer
// that never talks to a server: every span and metric here describes one
// Validate call, not a network round trip.
package telemetry

import (
	"context"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName    = "github.com/joetechbob/cypher-guard/src/telemetry"
	instrumentationVersion = "0.1.0"
)

// Config controls telemetry collection for a Validate call.
type Config struct {
	EnableTracing bool
	EnableMetrics bool

	// Attributes are attached to every span and metric this Instruments
	// emits (e.g. a schema name or deployment tag).
	Attributes []attribute.KeyValue
}

// DefaultConfig enables both tracing and metrics with no extra attributes.
func DefaultConfig() *Config {
	return &Config{
		EnableTracing: true,
		EnableMetrics: true,
		Attributes: []attribute.KeyValue{
			attribute.String("cypherguard.component", "validator"),
		},
	}
}

// Instruments holds the OpenTelemetry tracer, meter, and the instruments
// derived from them. A zero-value Instruments is not usable; construct
// with NewInstruments.
type Instruments struct {
	tracer trace.Tracer
	meter  metric.Meter

	validationDuration metric.Float64Histogram
	validationCount    metric.Int64Counter
	structuralErrors   metric.Int64Counter
	typeWarnings       metric.Int64Counter
	typeErrors         metric.Int64Counter
	parseErrors        metric.Int64Counter
}

// NewInstruments registers the meter/tracer and every instrument this
// package records. Errors from metric construction are handed to
// otel.Handle, matching the teacher driver's initObservability.
func NewInstruments() *Instruments {
	tracer := otel.Tracer(instrumentationName, trace.WithInstrumentationVersion(instrumentationVersion))
	meter := otel.Meter(instrumentationName, metric.WithInstrumentationVersion(instrumentationVersion))

	in := &Instruments{tracer: tracer, meter: meter}

	var err error
	in.validationDuration, err = meter.Float64Histogram(
		"cypherguard.validation.duration",
		metric.WithDescription("Duration of a single Validate call"),
		metric.WithUnit("s"),
	)
	if err != nil {
		otel.Handle(err)
	}
	in.validationCount, err = meter.Int64Counter(
		"cypherguard.validation.count",
		metric.WithDescription("Number of Validate calls"),
	)
	if err != nil {
		otel.Handle(err)
	}
	in.structuralErrors, err = meter.Int64Counter(
		"cypherguard.validation.structural_errors",
		metric.WithDescription("Number of structural validation errors produced"),
	)
	if err != nil {
		otel.Handle(err)
	}
	in.typeWarnings, err = meter.Int64Counter(
		"cypherguard.validation.type_warnings",
		metric.WithDescription("Number of type-checker warnings produced"),
	)
	if err != nil {
		otel.Handle(err)
	}
	in.typeErrors, err = meter.Int64Counter(
		"cypherguard.validation.type_errors",
		metric.WithDescription("Number of type-checker errors produced"),
	)
	if err != nil {
		otel.Handle(err)
	}
	in.parseErrors, err = meter.Int64Counter(
		"cypherguard.validation.parse_errors",
		metric.WithDescription("Number of queries that failed to parse"),
	)
	if err != nil {
		otel.Handle(err)
	}

	return in
}

// InstallStdoutExporters wires the global OpenTelemetry tracer and meter
// providers to the stdout exporters, writing newline-delimited JSON spans
// and metrics to w. It is meant for the CLI's --telemetry=stdout flag, a
// zero-infrastructure way to see what NewInstruments records without
// standing up a collector. The returned shutdown flushes and detaches
// both providers; callers should defer it.
func InstallStdoutExporters(w io.Writer) (shutdown func(context.Context) error, err error) {
	traceExporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
	)
	otel.SetTracerProvider(tracerProvider)

	metricExporter, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
	if err != nil {
		return nil, err
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
	)
	otel.SetMeterProvider(meterProvider)

	return func(ctx context.Context) error {
		if err := tracerProvider.Shutdown(ctx); err != nil {
			return err
		}
		return meterProvider.Shutdown(ctx)
	}, nil
}

// Span tracks one in-flight Validate call's span and start time.
type Span struct {
	span      trace.Span
	startTime time.Time
}

// StartValidation opens a span for one Validate call. db.statement is
// deliberately never attached as a span attribute: the query text itself
// may carry sensitive literal values, so only its length is recorded
// (mirrors the parameter-count-not-values rule in the teacher driver's
// startQuerySpan).
func (in *Instruments) StartValidation(ctx context.Context, cfg *Config, queryLen int) (context.Context, *Span) {
	if cfg == nil || !cfg.EnableTracing {
		return ctx, &Span{startTime: time.Now()}
	}

	attrs := make([]attribute.KeyValue, 0, len(cfg.Attributes)+1)
	attrs = append(attrs, cfg.Attributes...)
	attrs = append(attrs, attribute.Int("cypherguard.query.length", queryLen))

	ctx, span := in.tracer.Start(ctx, "cypherguard.validate",
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	return ctx, &Span{span: span, startTime: time.Now()}
}

// Summary is the subset of a validator.Result this package needs to
// record metrics and finish a span without importing src/validator
// (which imports this package, so that import would be a cycle).
type Summary struct {
	Valid            bool
	StructuralErrors int
	TypeWarningCount int
	TypeErrorCount   int
	ParseFailed      bool
}

// FinishValidation records metrics and closes the span opened by
// StartValidation.
func (in *Instruments) FinishValidation(ctx context.Context, span *Span, cfg *Config, summary Summary) {
	duration := time.Since(span.startTime)

	if cfg != nil && cfg.EnableMetrics {
		attrs := metric.WithAttributes(cfg.Attributes...)
		in.validationDuration.Record(ctx, duration.Seconds(), attrs)
		in.validationCount.Add(ctx, 1, attrs)
		if summary.ParseFailed {
			in.parseErrors.Add(ctx, 1, attrs)
		}
		if summary.StructuralErrors > 0 {
			in.structuralErrors.Add(ctx, int64(summary.StructuralErrors), attrs)
		}
		if summary.TypeWarningCount > 0 {
			in.typeWarnings.Add(ctx, int64(summary.TypeWarningCount), attrs)
		}
		if summary.TypeErrorCount > 0 {
			in.typeErrors.Add(ctx, int64(summary.TypeErrorCount), attrs)
		}
	}

	if cfg != nil && cfg.EnableTracing && span.span != nil {
		span.span.SetAttributes(
			attribute.Bool("cypherguard.valid", summary.Valid),
			attribute.Int("cypherguard.structural_errors", summary.StructuralErrors),
			attribute.Int("cypherguard.type_warnings", summary.TypeWarningCount),
			attribute.Int("cypherguard.type_errors", summary.TypeErrorCount),
			attribute.Float64("cypherguard.duration_ms", float64(duration.Nanoseconds())/1e6),
		)
		if summary.ParseFailed {
			span.span.SetStatus(codes.Error, "parse failed")
		} else if !summary.Valid {
			span.span.SetStatus(codes.Error, "validation failed")
		} else {
			span.span.SetStatus(codes.Ok, "")
		}
		span.span.End()
	}
}
