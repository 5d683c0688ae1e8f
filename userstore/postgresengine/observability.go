package postgresengine

import (
	"context"
	"math"
	"time"

	"github.com/tenantkit/dynamic-userstore-go/userstore"
)

const (
	metricQueryDuration  = "userstore_query_duration_seconds"
	metricDatabaseErrors = "userstore_database_errors_total"

	spanAttrOperation = "operation"
	spanAttrQueryID   = "query_id"

	statusOK    = "ok"
	statusError = "error"
)

// logQueryWithDuration logs SQL queries with execution time at debug level if a logger is configured.
func (us *UserStore) logQueryWithDuration(
	ctx context.Context,
	sqlQuery string,
	action string,
	queryID string,
	duration time.Duration,
) {
	args := []any{logAttrDurationMS, us.toMilliseconds(duration), logAttrQuery, sqlQuery}
	if queryID != "" {
		args = append(args, logAttrQueryID, queryID)
	}

	if us.contextualLogger != nil {
		us.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, args...)
		return
	}

	if us.logger != nil {
		us.logger.Debug(logMsgSQLExecuted+action, args...)
	}
}

// logOperation logs operational information at info level if a logger is configured.
func (us *UserStore) logOperation(message string, args ...any) {
	if us.logger != nil {
		us.logger.Info(message, args...)
	}
}

// logError logs error information at the error level if a logger is configured.
func (us *UserStore) logError(message string, err error, args ...any) {
	if us.logger != nil {
		allArgs := []any{logAttrError, err.Error()}
		allArgs = append(allArgs, args...)
		us.logger.Error(message, allArgs...)
	}
}

// logWarn logs non-critical issues at the warning level if a logger is configured.
func (us *UserStore) logWarn(message string, args ...any) {
	if us.logger != nil {
		us.logger.Warn(message, args...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (us *UserStore) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// recordDuration records a query duration metric if a metrics collector is configured.
func (us *UserStore) recordDuration(operation string, duration time.Duration) {
	if us.metricsCollector == nil {
		return
	}

	labels := map[string]string{spanAttrOperation: operation}
	us.metricsCollector.RecordDuration(metricQueryDuration, duration, labels)
}

// recordError counts a database error if a metrics collector is configured.
func (us *UserStore) recordError(operation string) {
	if us.metricsCollector == nil {
		return
	}

	labels := map[string]string{spanAttrOperation: operation, "status": statusError}
	us.metricsCollector.IncrementCounter(metricDatabaseErrors, labels)
}

// startSpan starts a tracing span if a tracing collector is configured.
func (us *UserStore) startSpan(
	ctx context.Context,
	operation string,
	attrs map[string]string,
) (context.Context, userstore.SpanContext) {

	if us.tracingCollector == nil {
		return ctx, nil
	}

	if attrs == nil {
		attrs = map[string]string{}
	}
	attrs[spanAttrOperation] = operation

	return us.tracingCollector.StartSpan(ctx, "userstore."+operation, attrs)
}

// finishSpan completes a tracing span if one was started.
func (us *UserStore) finishSpan(span userstore.SpanContext, status string) {
	if us.tracingCollector == nil || span == nil {
		return
	}

	us.tracingCollector.FinishSpan(span, status, nil)
}
