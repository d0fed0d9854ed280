package tracing

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Database span attributes
const (
	DBSystemKey    = attribute.Key("db.system")
	DBStatementKey = attribute.Key("db.statement")
	DBOperationKey = attribute.Key("db.operation")
	DBTableKey     = attribute.Key("db.sql.table")
	DBRowsAffected = attribute.Key("db.rows_affected")
)

// Redis span attributes
const (
	RedisCommandKey = attribute.Key("redis.command")
	RedisKeyKey     = attribute.Key("redis.key")
)

// Business logic span attributes
const (
	ProfileIDKey    = attribute.Key("profile.id")
	OrderIDKey      = attribute.Key("order.id")
	ProviderIDKey   = attribute.Key("provider.id")
	SettlementIDKey = attribute.Key("settlement.id")
	OrderTotalKey   = attribute.Key("order.total")
	CommissionKey   = attribute.Key("commission.amount")
)

// TraceDBQuery wraps a database query with tracing
func TraceDBQuery(ctx context.Context, tracerName, operation, table string, fn func() error) error {
	ctx, span := StartSpan(ctx, tracerName, fmt.Sprintf("db.%s", operation),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()

	span.SetAttributes(
		DBSystemKey.String("postgresql"),
		DBOperationKey.String(operation),
		DBTableKey.String(table),
	)

	err := fn()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	return err
}

// TraceRedisCommand wraps a Redis command with tracing
func TraceRedisCommand(ctx context.Context, tracerName, command, key string, fn func() error) error {
	ctx, span := StartSpan(ctx, tracerName, fmt.Sprintf("redis.%s", command),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()

	span.SetAttributes(
		attribute.String("db.system", "redis"),
		RedisCommandKey.String(command),
		RedisKeyKey.String(key),
	)

	err := fn()
	if err != nil && err != redis.Nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	return err
}

// TraceBusinessLogic wraps business logic with tracing
func TraceBusinessLogic(ctx context.Context, tracerName, operation string, attrs []attribute.KeyValue, fn func(context.Context) error) error {
	ctx, span := StartSpan(ctx, tracerName, operation,
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	defer span.End()

	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)

	span.SetAttributes(
		attribute.Int64("duration_ms", duration.Milliseconds()),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	return err
}

// OrderAttributes builds span attributes for order operations
func OrderAttributes(orderID, customerID, providerID string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if orderID != "" {
		attrs = append(attrs, OrderIDKey.String(orderID))
	}
	if customerID != "" {
		attrs = append(attrs, ProfileIDKey.String(customerID))
	}
	if providerID != "" {
		attrs = append(attrs, ProviderIDKey.String(providerID))
	}
	return attrs
}

// SettlementAttributes builds span attributes for settlement operations
func SettlementAttributes(settlementID string, commission float64) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 2)
	if settlementID != "" {
		attrs = append(attrs, SettlementIDKey.String(settlementID))
	}
	if commission > 0 {
		attrs = append(attrs, CommissionKey.Float64(commission))
	}
	return attrs
}
