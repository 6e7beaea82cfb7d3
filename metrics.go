package ch

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"
	"go.opentelemetry.io/otel/trace"
)

// QueryMetrics is the lightweight per-operation accounting returned by
// InsertWriter.End. End fills ReceivedBytes and, when the server sent an
// X-ClickHouse-Summary header, Summary/HasSummary; QueryID, Started,
// Elapsed and DecodedBytes are left zero there. Cursors expose their byte
// counters through their own ReceivedBytes/DecodedBytes methods instead.
type QueryMetrics struct {
	QueryID       string
	Started       time.Time
	Elapsed       time.Duration
	ReceivedBytes int64
	DecodedBytes  int64
	Summary       Summary
	HasSummary    bool
}

// startSpan opens an optional otel span for one query, the way
// kokizzu-ch/query.go's Do wraps a query in a span with db.system/
// db.statement attributes when otel is configured. A nil Tracer makes this
// a no-op, so the overhead is zero when tracing isn't wired up.
func startSpan(ctx context.Context, tracer trace.Tracer, operation, sql string) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, "ch."+operation, trace.WithAttributes(
		semconv.DBSystemKey.String("clickhouse"),
		semconv.DBStatementKey.String(sql),
		attribute.String("ch.operation", operation),
	))
}

// endSpan records the final byte counters and, on error, marks the span
// failed before ending it.
func endSpan(span trace.Span, m QueryMetrics, err error) {
	if span == nil {
		return
	}
	span.SetAttributes(
		attribute.Int64("ch.received_bytes", m.ReceivedBytes),
		attribute.Int64("ch.decoded_bytes", m.DecodedBytes),
	)
	if err != nil {
		span.RecordError(err)
	}
	span.End()
}
