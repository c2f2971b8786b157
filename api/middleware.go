package api

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/zlnvch/notekeep/api/rest"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// instrument logs and records metrics for every request served under route.
func (notesAPI *NotesAPI) instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		notesAPI.metrics.observe(route, r.Method, rec.status, elapsed)
		notesAPI.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("route", route),
			zap.Int("status", rec.status),
			zap.Duration("duration", elapsed),
		)
	})
}

// withTimeout bounds every store and cache call made while serving r.
func withTimeout(timeout time.Duration, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (notesAPI *NotesAPI) rateLimited(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := notesAPI.clientIPs.ClientIP(r)
		if !notesAPI.authLimiter.Allow(ip) {
			notesAPI.metrics.RateLimited.WithLabelValues(route).Inc()
			notesAPI.logger.Warn("rate limit exceeded", zap.String("ip", ip), zap.String("route", route))
			w.Header().Set("Retry-After", "1")
			rest.WriteError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
