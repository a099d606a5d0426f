package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"timber-backend/internal/models"
	"timber-backend/internal/services"
	"timber-backend/pkg/utils"
)

type ProductionHandler struct {
	Service *services.ProductionService
}

func NewProductionHandler(s *services.ProductionService) *ProductionHandler {
	return &ProductionHandler{Service: s}
}

func (h *ProductionHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	filter := models.ProductionFilter{Status: r.URL.Query().Get("status")}
	if p := r.URL.Query().Get("process_id"); p != "" {
		id, err := strconv.Atoi(p)
		if err != nil {
			badID(w, "process_id")
			return
		}
		filter.ProcessID = id
	}

	entries, err := h.Service.List(r.Context(), actorFrom(r), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, entries)
}

func (h *ProductionHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProductionEntryRequest
	if !decode(w, r, &req) {
		return
	}
	entry, err := h.Service.CreateDraft(r.Context(), actorFrom(r), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, entry)
}

func (h *ProductionHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badID(w, "entry id")
		return
	}
	entry, err := h.Service.Get(r.Context(), actorFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, entry)
}

func (h *ProductionHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badID(w, "entry id")
		return
	}
	var req models.UpdateProductionEntryRequest
	if !decode(w, r, &req) {
		return
	}
	entry, err := h.Service.UpdateDraft(r.Context(), actorFrom(r), id, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, entry)
}

func (h *ProductionHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badID(w, "entry id")
		return
	}
	if err := h.Service.Delete(r.Context(), actorFrom(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductionHandler) AttachInput(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badID(w, "entry id")
		return
	}
	var req models.AttachInputRequest
	if !decode(w, r, &req) {
		return
	}
	in, err := h.Service.AttachInput(r.Context(), actorFrom(r), id, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, in)
}

func (h *ProductionHandler) RemoveInput(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	inputID, ok2 := pathID(r, "inputID")
	if !ok || !ok2 {
		badID(w, "id")
		return
	}
	if err := h.Service.RemoveInput(r.Context(), actorFrom(r), id, inputID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductionHandler) DefineOutput(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badID(w, "entry id")
		return
	}
	var req models.DefineOutputRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := h.Service.DefineOutput(r.Context(), actorFrom(r), id, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, out)
}

func (h *ProductionHandler) RemoveOutput(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	outputID, ok2 := pathID(r, "outputID")
	if !ok || !ok2 {
		badID(w, "id")
		return
	}
	if err := h.Service.RemoveOutput(r.Context(), actorFrom(r), id, outputID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductionHandler) AssignNumbers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badID(w, "entry id")
		return
	}
	numbers, err := h.Service.AssignPackageNumbers(r.Context(), actorFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{"assigned": numbers})
}

func (h *ProductionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badID(w, "entry id")
		return
	}
	summary, err := h.Service.Summary(r.Context(), actorFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, summary)
}

func (h *ProductionHandler) Validate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badID(w, "entry id")
		return
	}
	result, err := h.Service.Validate(r.Context(), actorFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, result)
}

func (h *ProductionHandler) CreateCorrection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badID(w, "entry id")
		return
	}
	entry, err := h.Service.CreateCorrection(r.Context(), actorFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, entry)
}

func (h *ProductionHandler) Slip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badID(w, "entry id")
		return
	}
	pdf, err := h.Service.Slip(r.Context(), actorFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=production-%d.pdf", id))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
