package postgresengine

import (
	"github.com/tenantkit/dynamic-userstore-go/userstore"
)

// Option defines a functional option for configuring a UserStore.
type Option func(*UserStore) error

// WithUserTableName sets the per-tenant user table name for the UserStore.
func WithUserTableName(tableName string) Option {
	return func(us *UserStore) error {
		if tableName == "" {
			return userstore.ErrEmptyUserTableName
		}

		if err := userstore.CheckTableColumn(tableName); err != nil {
			return err
		}

		us.userTableName = tableName

		return nil
	}
}

// WithExpressionFormatter sets the formatter that turns filter expressions
// into predicate text. The default formatter only handles userstore.Raw.
func WithExpressionFormatter(formatter userstore.ExpressionFormatter) Option {
	return func(us *UserStore) error {
		if formatter == nil {
			return userstore.ErrUnsupportedExpression
		}

		us.formatter = formatter

		return nil
	}
}

// WithLogger sets the logger for the UserStore.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: dispatched queries, property writes, durations (production-safe)
// Warn level: Non-critical issues like swallowed add-column races
// Error level: Critical failures that cause operation failures.
func WithLogger(logger userstore.Logger) Option {
	return func(us *UserStore) error {
		us.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the UserStore.
// The contextual logger will receive log messages with context information including
// automatic trace/span correlation when tracing is enabled, enabling unified observability.
func WithContextualLogger(logger userstore.ContextualLogger) Option {
	return func(us *UserStore) error {
		us.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the UserStore.
// The metrics collector will receive performance and operational metrics including
// query durations per operation and database errors.
func WithMetrics(collector userstore.MetricsCollector) Option {
	return func(us *UserStore) error {
		us.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the UserStore.
// The tracing collector will receive distributed tracing information including
// span creation for filter/mutation operations and error tracking.
func WithTracing(collector userstore.TracingCollector) Option {
	return func(us *UserStore) error {
		us.tracingCollector = collector
		return nil
	}
}
