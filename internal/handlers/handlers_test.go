package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timber-backend/internal/middleware"
	"timber-backend/internal/models"
	"timber-backend/internal/repositories/memstore"
	"timber-backend/internal/services"
	"timber-backend/pkg/utils"
)

func TestStatusFor(t *testing.T) {
	expected := map[services.ErrorKind]int{
		services.KindUnauthenticated: http.StatusUnauthorized,
		services.KindForbidden:       http.StatusForbidden,
		services.KindInvalidState:    http.StatusConflict,
		services.KindNotFound:        http.StatusNotFound,
		services.KindQueryFailed:     http.StatusInternalServerError,
		services.KindUpdateFailed:    http.StatusInternalServerError,
		services.KindDeleteFailed:    http.StatusInternalServerError,
		services.KindValidation:      http.StatusBadRequest,
		services.KindConflict:        http.StatusConflict,
	}
	for kind, status := range expected {
		assert.Equal(t, status, StatusFor(kind), kind)
	}
}

func TestWriteErrorBody(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	writeError(rec, req, &services.Error{
		Kind:    services.KindForbidden,
		Message: "cannot delete entry 4",
		Details: []models.PackageConsumer{{PackageID: 9, PackageNumber: "N-SAW-0001", EntryID: 5}},
	})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	var body struct {
		Error   string                   `json:"error"`
		Kind    string                   `json:"kind"`
		Details []models.PackageConsumer `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "cannot delete entry 4", body.Error)
	assert.Equal(t, "FORBIDDEN", body.Kind)
	require.Len(t, body.Details, 1)
	assert.Equal(t, 5, body.Details[0].EntryID)

	rec = httptest.NewRecorder()
	writeError(rec, req, errors.New("driver exploded"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "exploded")
}

type testServer struct {
	router *mux.Router
	store  *memstore.Store
	actor  services.Actor
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memstore.New()
	ts := &testServer{
		store: store,
		actor: services.Actor{UserID: 1, Role: models.RoleAdmin, OrganisationID: 1, HomeOrganisationID: 1},
	}

	production := NewProductionHandler(services.NewProductionService(store))
	processes := NewProcessHandler(services.NewProcessService(store, store))
	inventory := NewInventoryHandler(services.NewInventoryService(store))

	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), middleware.ActorKey, ts.actor)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.HandleFunc("/processes", processes.CreateProcess).Methods("POST")
	r.HandleFunc("/processes/{id}/next-number", processes.NextNumber).Methods("GET")
	r.HandleFunc("/packages", inventory.CreatePackage).Methods("POST")
	r.HandleFunc("/packages", inventory.ListPackages).Methods("GET")
	r.HandleFunc("/production", production.ListEntries).Methods("GET")
	r.HandleFunc("/production", production.CreateEntry).Methods("POST")
	r.HandleFunc("/production/{id}", production.GetEntry).Methods("GET")
	r.HandleFunc("/production/{id}", production.DeleteEntry).Methods("DELETE")
	r.HandleFunc("/production/{id}/inputs", production.AttachInput).Methods("POST")
	r.HandleFunc("/production/{id}/outputs", production.DefineOutput).Methods("POST")
	r.HandleFunc("/production/{id}/assign-numbers", production.AssignNumbers).Methods("POST")
	r.HandleFunc("/production/{id}/validate", production.Validate).Methods("POST")
	r.HandleFunc("/production/{id}/correction", production.CreateCorrection).Methods("POST")
	r.HandleFunc("/production/{id}/slip.pdf", production.Slip).Methods("GET")
	ts.router = r
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func errorKind(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body utils.ErrorBody
	decodeInto(t, rec, &body)
	return body.Kind
}

func TestProductionFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, "POST", "/processes", map[string]string{"code": "saw", "name": "Sawing"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var process models.Process
	decodeInto(t, rec, &process)

	rec = ts.do(t, "POST", "/packages", map[string]any{"package_number": "LOG-1", "pieces": 10, "volume": "1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var log models.Package
	decodeInto(t, rec, &log)

	rec = ts.do(t, "POST", "/production", map[string]any{"process_id": process.ID, "production_date": "2026-10-17"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var entry models.ProductionEntry
	decodeInto(t, rec, &entry)
	base := "/production/" + itoa(entry.ID)

	rec = ts.do(t, "POST", base+"/inputs", map[string]any{"package_id": log.ID, "pieces": 10, "volume": "1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = ts.do(t, "POST", base+"/outputs", map[string]any{"thickness": "25", "width": "100", "length": "4000", "pieces": 30})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, "POST", base+"/assign-numbers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var assigned struct {
		Assigned []string `json:"assigned"`
	}
	decodeInto(t, rec, &assigned)
	assert.Equal(t, []string{"N-SAW-0001"}, assigned.Assigned)

	rec = ts.do(t, "POST", base+"/validate", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result models.ValidationResult
	decodeInto(t, rec, &result)
	assert.Equal(t, models.ProductionStatusValidated, result.Entry.Status)
	assert.Equal(t, "30", result.Summary.OutcomePercent.String())

	// Validating twice is a state conflict
	rec = ts.do(t, "POST", base+"/validate", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INVALID_STATE", errorKind(t, rec))

	rec = ts.do(t, "GET", base+"/slip.pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	rec = ts.do(t, "GET", "/production?status=validated", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []models.ProductionEntry
	decodeInto(t, rec, &entries)
	assert.Len(t, entries, 1)

	rec = ts.do(t, "POST", base+"/correction", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, "DELETE", base, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = ts.do(t, "GET", base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorKind(t, rec))
}

func TestHandlerErrorMapping(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, "GET", "/production/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, "GET", "/production?process_id=x", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	ts.router.ServeHTTP(rec, httptest.NewRequest("POST", "/production", bytes.NewBufferString("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION", errorKind(t, rec))

	rec = ts.do(t, "POST", "/production", map[string]any{"process_id": 42})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	ts.actor.Role = models.RoleViewer
	rec = ts.do(t, "POST", "/processes", map[string]string{"code": "PLN", "name": "Planing"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", errorKind(t, rec))

	ts.actor = services.Actor{}
	rec = ts.do(t, "GET", "/production", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNextNumberPreview(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, "POST", "/processes", map[string]string{"code": "DRY", "name": "Drying"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var process models.Process
	decodeInto(t, rec, &process)

	rec = ts.do(t, "GET", "/processes/"+itoa(process.ID)+"/next-number", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var preview models.NextNumberPreview
	decodeInto(t, rec, &preview)
	assert.Equal(t, "N-DRY-0001", preview.Next)
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
