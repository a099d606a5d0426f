package handlers

import (
	"net/http"

	"timber-backend/internal/models"
	"timber-backend/internal/services"
	"timber-backend/pkg/utils"
)

type InventoryHandler struct {
	Service *services.InventoryService
}

func NewInventoryHandler(s *services.InventoryService) *InventoryHandler {
	return &InventoryHandler{Service: s}
}

func (h *InventoryHandler) ListPackages(w http.ResponseWriter, r *http.Request) {
	filter := models.PackageFilter{
		Status: r.URL.Query().Get("status"),
		Prefix: r.URL.Query().Get("prefix"),
	}
	packages, err := h.Service.List(r.Context(), actorFrom(r), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, packages)
}

func (h *InventoryHandler) GetPackage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badID(w, "package id")
		return
	}
	p, err := h.Service.Get(r.Context(), actorFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, p)
}

func (h *InventoryHandler) CreatePackage(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePackageRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.Service.Receive(r.Context(), actorFrom(r), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, p)
}
