package middleware

import (
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"timber-backend/pkg/utils"
)

func PanicRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				zap.L().Error("panic recovered",
					zap.Any("panic", err),
					zap.String("path", r.URL.Path),
					zap.String("request_id", GetRequestID(r.Context())),
					zap.ByteString("stack", debug.Stack()))
				utils.Error(w, http.StatusInternalServerError, "Internal server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
