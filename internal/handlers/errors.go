package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"timber-backend/internal/middleware"
	"timber-backend/internal/services"
	"timber-backend/pkg/utils"
)

// StatusFor maps a service error kind to its HTTP status
func StatusFor(kind services.ErrorKind) int {
	switch kind {
	case services.KindUnauthenticated:
		return http.StatusUnauthorized
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindInvalidState, services.KindConflict:
		return http.StatusConflict
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with {"error", "kind", "details"}; causes of internal
// failures are logged, not returned
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	se, ok := services.AsError(err)
	if !ok {
		zap.L().Error("unclassified handler error",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.Error(err))
		utils.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	status := StatusFor(se.Kind)
	if status >= http.StatusInternalServerError {
		zap.L().Error("service failure",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.String("kind", string(se.Kind)),
			zap.Error(err))
	}
	utils.JSON(w, status, utils.ErrorBody{Error: se.Message, Kind: string(se.Kind), Details: se.Details})
}

func actorFrom(r *http.Request) services.Actor {
	// A missing actor yields the zero value, which services reject as unauthenticated
	actor, _ := middleware.GetActorFromContext(r.Context())
	return actor
}

func pathID(r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	return id, err == nil && id > 0
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.JSON(w, http.StatusBadRequest, utils.ErrorBody{Error: "Invalid request body", Kind: string(services.KindValidation)})
		return false
	}
	return true
}

func badID(w http.ResponseWriter, name string) {
	utils.JSON(w, http.StatusBadRequest, utils.ErrorBody{Error: "invalid " + name, Kind: string(services.KindValidation)})
}
