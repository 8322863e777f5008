package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"household/internal/core"
	applog "household/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).String(),
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(health)
}

// handleReady checks that templates parsed and the database answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if err := s.household.Store().Ping(ctx); err != nil {
		checks["store"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	checks["rate_limiter"] = map[string]interface{}{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}

	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(response)
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	traceMetrics := s.traceMiddleware.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	chartStats := s.chartCache.Stats()

	w.WriteHeader(http.StatusOK)

	counter := func(name, help string, v int64) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s counter\n", name)
		fmt.Fprintf(w, "%s %d\n\n", name, v)
	}
	gauge := func(name, help string, v int64) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s gauge\n", name)
		fmt.Fprintf(w, "%s %d\n\n", name, v)
	}

	counter("http_requests_total", "Total number of HTTP requests", traceMetrics.TotalRequests)
	counter("http_client_errors_total", "Responses with a 4xx status", traceMetrics.ClientErrors)
	counter("http_server_errors_total", "Responses with a 5xx status", traceMetrics.ServerErrors)
	gauge("http_response_time_avg_microseconds", "Running mean response time", traceMetrics.AverageResponseTime)
	counter("records_created_total", "Records created through the forms", atomic.LoadInt64(&s.appMetrics.created))
	counter("records_toggled_total", "Task and shopping item toggles", atomic.LoadInt64(&s.appMetrics.toggled))
	counter("records_deleted_total", "Tasks deleted", atomic.LoadInt64(&s.appMetrics.deleted))
	counter("form_rejections_total", "Creation forms rejected by validation", atomic.LoadInt64(&s.appMetrics.rejected))
	counter("rate_limit_hits_total", "Total rate limit hits", rateLimitMetrics.TotalHits)
	counter("suspicious_requests_total", "Total suspicious requests detected", s.securityDetector.SuspiciousRequests())
	counter("chart_cache_hits_total", "Expense charts served from cache", chartStats.Hits)
	counter("chart_cache_misses_total", "Expense charts rendered", chartStats.Misses)
	gauge("active_rate_limit_clients", "Currently tracked rate limit clients", rateLimitMetrics.ClientCount)
	gauge("uptime_seconds", "Application uptime in seconds", int64(time.Since(s.appMetrics.uptime).Seconds()))
}

// fail answers a request whose service call returned an error that is not a
// validation problem.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, kind core.Kind, id int64, op string, err error) {
	if errors.Is(err, core.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	requestLogger(r).ErrorContext(r.Context(), "Request failed", applog.NewFields().
		WithOperation(op).
		WithRecord(kind.String(), id).
		WithError(err).
		ToSlice()...)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

// created finishes a creation form: a validation error flashes and returns to
// the listing, any other error is a 500, success flashes and redirects.
func (s *Server) created(w http.ResponseWriter, r *http.Request, kind core.Kind, listing string, id int64, err error, msg string) {
	if err != nil {
		var ve *core.ValidationError
		if errors.As(err, &ve) {
			s.count(&s.appMetrics.rejected)
			requestLogger(r).InfoContext(r.Context(), "Form rejected",
				applog.FieldKind, kind,
				applog.FieldField, ve.Field,
				applog.FieldError, ve.Message)
			s.redirect(w, r, NewRedirect(listing).Error(ve.Message))
			return
		}
		s.fail(w, r, kind, 0, applog.OpCreate, err)
		return
	}

	s.count(&s.appMetrics.created)
	requestLogger(r).InfoContext(r.Context(), "Record created", applog.NewFields().
		WithOperation(applog.OpCreate).
		WithRecord(kind.String(), id).
		ToSlice()...)
	s.redirect(w, r, NewRedirect(listing).Success(msg))
}

func (s *Server) redirect(w http.ResponseWriter, r *http.Request, b *RedirectBuilder) {
	if err := b.Write(w, r, s.flash); err != nil {
		requestLogger(r).WarnContext(r.Context(), "Failed to set flash cookie", applog.FieldError, err)
	}
}

// requestLogger returns the logger carrying this request's id.
func requestLogger(r *http.Request) *applog.Logger {
	return applog.FromContext(r.Context())
}
