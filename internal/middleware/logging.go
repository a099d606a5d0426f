package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// RequestLogger tags each request with an id and logs it once it completes
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)
		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)

		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		// The auth middleware runs later and adds the actor to its own copy
		// of the request, so the actor is captured through this holder.
		holder := &actorHolder{}
		ctx = context.WithValue(ctx, actorHolderKey, holder)

		next.ServeHTTP(wrapped, r.WithContext(ctx))

		if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
			return
		}
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", wrapped.statusCode),
			zap.Duration("duration", time.Since(start)),
		}
		if holder.userID != 0 {
			fields = append(fields, zap.Int("user_id", holder.userID), zap.Int("org_id", holder.orgID))
		}
		if wrapped.statusCode >= http.StatusInternalServerError {
			zap.L().Error("request", fields...)
		} else {
			zap.L().Info("request", fields...)
		}
	})
}

const actorHolderKey contextKey = "actor_holder"

type actorHolder struct {
	userID int
	orgID  int
}

// GetRequestID returns the id assigned by RequestLogger
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
