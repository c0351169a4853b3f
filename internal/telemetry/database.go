package telemetry

import (
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const (
	spanKey        = "otel:span"
	maxStatementSz = 500
)

// GORMTracingPlugin returns a GORM plugin that opens one span per
// statement, tagged with the dialect name.
func GORMTracingPlugin() gorm.Plugin {
	return &tracingPlugin{tracer: otel.Tracer("gorm")}
}

type tracingPlugin struct {
	tracer trace.Tracer
}

func (p *tracingPlugin) Name() string {
	return "telemetry:tracing"
}

func (p *tracingPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	steps := []struct {
		op  string
		err error
	}{
		{"select", cb.Query().Before("gorm:query").Register("telemetry:before_query", p.before("SELECT"))},
		{"insert", cb.Create().Before("gorm:create").Register("telemetry:before_create", p.before("INSERT"))},
		{"update", cb.Update().Before("gorm:update").Register("telemetry:before_update", p.before("UPDATE"))},
		{"delete", cb.Delete().Before("gorm:delete").Register("telemetry:before_delete", p.before("DELETE"))},
		{"select", cb.Query().After("gorm:query").Register("telemetry:after_query", p.after)},
		{"insert", cb.Create().After("gorm:create").Register("telemetry:after_create", p.after)},
		{"update", cb.Update().After("gorm:update").Register("telemetry:after_update", p.after)},
		{"delete", cb.Delete().After("gorm:delete").Register("telemetry:after_delete", p.after)},
	}
	for _, step := range steps {
		if step.err != nil {
			return fmt.Errorf("failed to register %s tracing callback: %w", step.op, step.err)
		}
	}
	return nil
}

func (p *tracingPlugin) before(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			return
		}
		table := db.Statement.Table
		if table == "" {
			table = "unknown"
		}
		_, span := p.tracer.Start(ctx, "db."+strings.ToLower(operation),
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("db.system", db.Dialector.Name()),
				attribute.String("db.table", table),
				attribute.String("db.operation", operation),
			),
		)
		db.InstanceSet(spanKey, span)
	}
}

func (p *tracingPlugin) after(db *gorm.DB) {
	raw, ok := db.InstanceGet(spanKey)
	if !ok {
		return
	}
	span, ok := raw.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	if sql := db.Statement.SQL.String(); sql != "" {
		if len(sql) > maxStatementSz {
			sql = sql[:maxStatementSz] + "... (truncated)"
		}
		span.SetAttributes(attribute.String("db.statement", sql))
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", db.RowsAffected))

	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}
}
