package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"timber-backend/internal/handlers"
	"timber-backend/internal/middleware"
	"timber-backend/internal/models"
)

// Handlers groups everything the router mounts
type Handlers struct {
	Auth       *handlers.AuthHandler
	Process    *handlers.ProcessHandler
	Inventory  *handlers.InventoryHandler
	Production *handlers.ProductionHandler
	Board      *handlers.BoardHandler
	Health     *handlers.HealthHandler
}

func NewRouter(hs Handlers, authMiddleware *middleware.AuthMiddleware) *mux.Router {
	r := mux.NewRouter()
	// Route templates are only known inside the router, so metrics run here
	r.Use(middleware.RequestLogger, middleware.MetricsMiddleware)

	// Public API routes - Authentication
	r.HandleFunc("/auth/login", hs.Auth.Login).Methods("POST")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware.Authenticate)
	api.HandleFunc("/me", hs.Auth.Me).Methods("GET")

	// Processes
	api.HandleFunc("/processes", hs.Process.ListProcesses).Methods("GET")
	api.HandleFunc("/processes/{id}/next-number", hs.Process.NextNumber).Methods("GET")
	adminOnly := authMiddleware.RequireRole(models.RoleAdmin)
	api.Handle("/processes", adminOnly(http.HandlerFunc(hs.Process.CreateProcess))).Methods("POST")
	api.Handle("/processes/{id}/deactivate", adminOnly(http.HandlerFunc(hs.Process.DeactivateProcess))).Methods("PATCH")

	// Inventory
	api.HandleFunc("/packages", hs.Inventory.ListPackages).Methods("GET")
	api.HandleFunc("/packages", hs.Inventory.CreatePackage).Methods("POST")
	api.HandleFunc("/packages/{id}", hs.Inventory.GetPackage).Methods("GET")

	// Production entries
	prod := api.PathPrefix("/production").Subrouter()
	prod.HandleFunc("", hs.Production.ListEntries).Methods("GET")
	prod.HandleFunc("", hs.Production.CreateEntry).Methods("POST")
	prod.HandleFunc("/{id}", hs.Production.GetEntry).Methods("GET")
	prod.HandleFunc("/{id}", hs.Production.UpdateEntry).Methods("PUT")
	prod.HandleFunc("/{id}", hs.Production.DeleteEntry).Methods("DELETE")
	prod.HandleFunc("/{id}/inputs", hs.Production.AttachInput).Methods("POST")
	prod.HandleFunc("/{id}/inputs/{inputID}", hs.Production.RemoveInput).Methods("DELETE")
	prod.HandleFunc("/{id}/outputs", hs.Production.DefineOutput).Methods("POST")
	prod.HandleFunc("/{id}/outputs/{outputID}", hs.Production.RemoveOutput).Methods("DELETE")
	prod.HandleFunc("/{id}/assign-numbers", hs.Production.AssignNumbers).Methods("POST")
	prod.HandleFunc("/{id}/summary", hs.Production.Summary).Methods("GET")
	prod.HandleFunc("/{id}/validate", hs.Production.Validate).Methods("POST")
	prod.HandleFunc("/{id}/correction", hs.Production.CreateCorrection).Methods("POST")
	prod.HandleFunc("/{id}/slip.pdf", hs.Production.Slip).Methods("GET")

	// Browsers cannot set headers on a websocket handshake
	ws := r.PathPrefix("/ws").Subrouter()
	ws.Use(authMiddleware.AuthenticateQuery)
	ws.HandleFunc("/production", hs.Board.Connect).Methods("GET")

	// Health endpoints (no auth required - for K8s probes and monitoring)
	r.HandleFunc("/health", hs.Health.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", hs.Health.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", hs.Health.DetailedHealth).Methods("GET")

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not found", http.StatusNotFound)
	})

	return r
}
