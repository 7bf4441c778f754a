package api

import (
	"net/http"
	"route-planner-service/internal/api/handlers"
	"route-planner-service/internal/platform/obs"
	"route-planner-service/internal/ports"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// Handlers stay unaware of concrete adapters.
func NewRouter(planner handlers.PlanService, stops ports.StopRepository, defaultVehicles int) http.Handler {
	obs.RegisterMetrics()

	mux := http.NewServeMux()

	stopHandler := &handlers.StopHandler{Repo: stops}
	planHandler := &handlers.PlanHandler{
		Planner:         planner,
		DefaultVehicles: defaultVehicles,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/stops", stopHandler.List)
	mux.HandleFunc("/plans", planHandler.Create)
	mux.HandleFunc("/plans/{id}", planHandler.Get)
	mux.Handle("/metrics", promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{}))

	return requestIDMiddleware(loggingMiddleware(mux))
}
