package rpcServer

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/orbs-network/pos-analytics/pkg/metrics/metricsTypes"
	"go.uber.org/zap"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/ext"
	ddTracer "gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

const requestIdHeader = "x-request-id"

type requestIdKey struct{}

// RequestIdFromContext returns the id assigned to the request, if any.
func RequestIdFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIdKey{}).(string)
	return id
}

// requestIdMiddleware keeps the caller's request id or assigns a new one.
func requestIdMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIdHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(requestIdHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIdKey{}, id)))
	})
}

// statusResponseWriter captures the status code of a response.
type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newStatusResponseWriter(w http.ResponseWriter) *statusResponseWriter {
	return &statusResponseWriter{w, http.StatusOK}
}

func (s *statusResponseWriter) WriteHeader(code int) {
	s.statusCode = code
	s.ResponseWriter.WriteHeader(code)
}

func routePattern(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unknown"
}

func (rpc *RpcServer) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := newStatusResponseWriter(w)
		next.ServeHTTP(srw, r)

		pattern := routePattern(r)
		labels := []metricsTypes.MetricsLabel{
			{Name: "method", Value: r.Method},
			{Name: "path", Value: r.URL.Path},
			{Name: "status_code", Value: strconv.Itoa(srw.statusCode)},
			{Name: "pattern", Value: pattern},
		}
		_ = rpc.metricsSink.Incr(metricsTypes.Metric_Incr_HttpRequest, labels, 1)
		_ = rpc.metricsSink.Timing(metricsTypes.Metric_Timing_HttpDuration, time.Since(start), labels)

		rpc.logger.Sugar().Debugw("Handled request",
			zap.String("requestId", RequestIdFromContext(r.Context())),
			zap.String("method", r.Method),
			zap.String("pattern", pattern),
			zap.Int("status", srw.statusCode),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func tracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		span, ctx := ddTracer.StartSpanFromContext(r.Context(), "http.request",
			ddTracer.SpanType(ext.SpanTypeWeb),
			ddTracer.ResourceName(r.Method+" "+routePattern(r)),
			ddTracer.Tag(ext.HTTPMethod, r.Method),
			ddTracer.Tag(ext.HTTPURL, r.URL.Path),
		)
		srw := newStatusResponseWriter(w)
		next.ServeHTTP(srw, r.WithContext(ctx))
		span.SetTag(ext.HTTPCode, strconv.Itoa(srw.statusCode))
		span.Finish()
	})
}
