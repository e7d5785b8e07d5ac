// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 dockyard contributors
// https://github.com/Jailtonfonseca/dockyard

// Package middleware provides HTTP middleware for the API server.
package middleware

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	apierrors "github.com/Jailtonfonseca/dockyard/internal/api/errors"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	realIPKey    contextKey = "real_ip"
)

// HeaderRequestID is the header carrying the request ID.
const HeaderRequestID = "X-Request-ID"

// RequestLogger is the logging interface middleware depends on.
type RequestLogger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ============================================================================
// Request ID
// ============================================================================

// RequestID assigns each request a unique ID, honoring one supplied by
// the client, and echoes it in the response headers.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), requestIDKey, id)
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the request ID from the context, if any.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ============================================================================
// Real IP
// ============================================================================

// RealIP resolves the client IP behind proxies and stores it in the
// request context.
func RealIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), realIPKey, getRealIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRealIP returns the resolved client IP from the context, falling
// back to RemoteAddr.
func GetRealIP(r *http.Request) string {
	if ip, ok := r.Context().Value(realIPKey).(string); ok && ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// ============================================================================
// Request logging
// ============================================================================

// statusWriter records the response status code and bytes written.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// SimpleLogging logs one line per request after it completes.
func SimpleLogging(log RequestLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w}
			start := time.Now()

			next.ServeHTTP(sw, r)

			status := sw.status
			if status == 0 {
				status = http.StatusOK
			}
			log.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", sw.bytes,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote", GetRealIP(r),
				"request_id", GetRequestID(r.Context()),
			)
		})
	}
}

// ============================================================================
// Panic recovery
// ============================================================================

// RecoveryConfig configures the Recovery middleware.
type RecoveryConfig struct {
	Logger     RequestLogger
	PrintStack bool
}

// Recovery turns panics in handlers into 500 responses instead of
// killing the connection.
func Recovery(config RecoveryConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				if config.Logger != nil {
					fields := []interface{}{
						"panic", rec,
						"method", r.Method,
						"path", r.URL.Path,
						"request_id", GetRequestID(r.Context()),
					}
					if config.PrintStack {
						fields = append(fields, "stack", string(debug.Stack()))
					}
					config.Logger.Error("panic recovered in handler", fields...)
				}

				apierrors.WriteErrorWithRequestID(w,
					apierrors.Internal("an internal error occurred"),
					GetRequestID(r.Context()))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
