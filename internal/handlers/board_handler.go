package handlers

import (
	"net/http"

	"timber-backend/internal/realtime"
)

// BoardHandler streams production events over a websocket
type BoardHandler struct {
	Hub *realtime.Hub
}

func NewBoardHandler(hub *realtime.Hub) *BoardHandler {
	return &BoardHandler{Hub: hub}
}

func (h *BoardHandler) Connect(w http.ResponseWriter, r *http.Request) {
	h.Hub.ServeWS(w, r, actorFrom(r).OrganisationID)
}
