package handlers

import (
	"net/http"

	"timber-backend/internal/models"
	"timber-backend/internal/services"
	"timber-backend/pkg/utils"
)

type AuthHandler struct {
	Service *services.UserService
}

func NewAuthHandler(s *services.UserService) *AuthHandler {
	return &AuthHandler{Service: s}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := h.Service.Login(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

// Me returns the signed-in user and the organisation being acted on
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	user, err := h.Service.GetUser(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{
		"user":            user,
		"organisation_id": actor.OrganisationID,
		"impersonating":   actor.Impersonating(),
	})
}
