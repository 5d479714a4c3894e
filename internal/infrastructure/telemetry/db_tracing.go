package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for per-statement database spans.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // keep bound variables in db.statement (development only)
	SlowQueryThresh time.Duration // statements slower than this get a slow_query_warning event
	DBSystem        string
	// TracerProvider overrides the global provider; nil uses otel.GetTracerProvider().
	TracerProvider trace.TracerProvider
}

// DefaultDBTracingConfig returns the disabled, variable-free default.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "postgresql",
	}
}

// DBTracingPlugin installs otelgorm plus the slow statement and guarded
// update annotations on a GORM handle.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a database tracing plugin.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = DefaultDBTracingConfig().SlowQueryThresh
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = DefaultDBTracingConfig().DBSystem
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

type dbContextKey string

const queryStartTimeKey dbContextKey = "wms_db_query_start"

// RegisterOtelGorm wires statement spans into db. It is a no-op when
// database tracing is disabled.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	// Registered ahead of otelgorm so the after hooks run while its span is open.
	if err := p.registerCallbacks(db); err != nil {
		return err
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if p.config.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(p.config.TracerProvider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.String("db_system", p.config.DBSystem),
	)
	return nil
}

func (p *DBTracingPlugin) registerCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		before, after func(name string, fn func(*gorm.DB)) error
		op            string
	}{
		{cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register, "create"},
		{cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register, "query"},
		{cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register, "update"},
		{cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register, "delete"},
		{cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register, "row"},
		{cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register, "raw"},
	}
	for _, h := range hooks {
		if err := h.before("wms_db:before_"+h.op, markQueryStart); err != nil {
			return err
		}
		if err := h.after("wms_db:after_"+h.op, p.afterStatement(h.op)); err != nil {
			return err
		}
	}
	return nil
}

func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
	}
}

// afterStatement annotates the statement span. Optimistic version checks and
// guarded delivery increments are UPDATEs whose miss shows up as zero rows,
// so those get db.no_rows_updated for easy filtering.
func (p *DBTracingPlugin) afterStatement(op string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			return
		}
		span := trace.SpanFromContext(ctx)
		if !span.IsRecording() {
			return
		}

		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
		if db.Statement.Table != "" {
			span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
		}
		if (op == "update" || op == "raw") && db.Error == nil && db.Statement.RowsAffected == 0 {
			span.SetAttributes(attribute.Bool("db.no_rows_updated", true))
		}

		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, db.Error.Error())
			span.RecordError(db.Error)
		}

		start, ok := ctx.Value(queryStartTimeKey).(time.Time)
		if !ok {
			return
		}
		if elapsed := time.Since(start); elapsed > p.config.SlowQueryThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
			span.AddEvent("slow_query_warning", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
			))
		}
	}
}
