package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"route-planner-service/internal/api/dto"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/services"
	"strings"
)

const maxVehicles = 50

// PlanService is the part of services.Planner the handlers need.
type PlanService interface {
	Plan(ctx context.Context, req services.PlanRequest) (*domain.PlanResult, error)
	GetPlan(ctx context.Context, planID string) (*domain.PlanResult, error)
}

type PlanHandler struct {
	Planner         PlanService
	DefaultVehicles int
}

// Create builds and stores a route plan for the stored or supplied stops.
func (h *PlanHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req dto.PlanRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	vehicles := h.DefaultVehicles
	if req.NumVehicles != nil {
		vehicles = *req.NumVehicles
	}
	if vehicles < 1 || vehicles > maxVehicles {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("num_vehicles must be between 1 and %d", maxVehicles))
		return
	}

	svcReq := services.PlanRequest{
		NumVehicles: vehicles,
		Depot:       req.Depot,
		Improve:     req.Improve,
	}
	for _, s := range req.Stops {
		svcReq.Stops = append(svcReq.Stops, domain.Stop{
			ID:          strings.TrimSpace(s.StopID),
			Coordinates: domain.Coordinates{Lat: s.Latitude, Lon: s.Longitude},
		})
	}

	res, err := h.Planner.Plan(r.Context(), svcReq)
	if err != nil {
		writeServiceError(w, r, "plan routes", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toPlanResponse(res))
}

// Get returns a previously stored plan.
func (h *PlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "plan id is required")
		return
	}

	res, err := h.Planner.GetPlan(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "get plan", err)
		return
	}

	writeJSON(w, r, http.StatusOK, toPlanResponse(res))
}

func toPlanResponse(p *domain.PlanResult) dto.PlanResponse {
	res := dto.PlanResponse{
		PlanID:      p.PlanID,
		CreatedAt:   p.CreatedAt,
		NumVehicles: p.NumVehicles,
		Depot:       p.Depot,
		Improved:    p.Improved,
		Empty:       p.Empty,
		TotalKm:     p.TotalKm,
		Routes:      make([]dto.RouteResponse, 0, len(p.Routes)),
	}
	if p.Empty {
		res.Message = "No solution found."
	}

	for _, route := range p.Routes {
		rr := dto.RouteResponse{
			Vehicle:  route.Vehicle,
			Sequence: route.Sequence,
			TotalKm:  route.TotalKm,
			Stops:    make([]dto.RouteStopResponse, 0, len(route.Stops)),
		}
		for _, s := range route.Stops {
			rr.Stops = append(rr.Stops, dto.RouteStopResponse{
				Index:     s.Index,
				StopID:    s.StopID,
				Latitude:  s.Coordinates.Lat,
				Longitude: s.Coordinates.Lon,
				LegKm:     s.LegKm,
			})
		}
		res.Routes = append(res.Routes, rr)
	}
	return res
}
