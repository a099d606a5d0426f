package handlers

import (
	"net/http"

	"timber-backend/internal/models"
	"timber-backend/internal/services"
	"timber-backend/pkg/utils"
)

type ProcessHandler struct {
	Service *services.ProcessService
}

func NewProcessHandler(s *services.ProcessService) *ProcessHandler {
	return &ProcessHandler{Service: s}
}

func (h *ProcessHandler) ListProcesses(w http.ResponseWriter, r *http.Request) {
	processes, err := h.Service.List(r.Context(), actorFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, processes)
}

func (h *ProcessHandler) CreateProcess(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProcessRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.Service.Create(r.Context(), actorFrom(r), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, p)
}

func (h *ProcessHandler) DeactivateProcess(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badID(w, "process id")
		return
	}
	if err := h.Service.Deactivate(r.Context(), actorFrom(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProcessHandler) NextNumber(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badID(w, "process id")
		return
	}
	preview, err := h.Service.PreviewNextNumber(r.Context(), actorFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, preview)
}
