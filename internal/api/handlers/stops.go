package handlers

import (
	"net/http"
	"route-planner-service/internal/api/dto"
	"route-planner-service/internal/ports"
)

// StopHandler exposes the stored stop list.
type StopHandler struct {
	Repo ports.StopRepository
}

func (h *StopHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	stops, err := h.Repo.ListStops(r.Context())
	if err != nil {
		writeServiceError(w, r, "list stops", err)
		return
	}

	res := dto.ListStopsResponse{Stops: make([]dto.StopResponse, 0, len(stops))}
	for _, s := range stops {
		res.Stops = append(res.Stops, dto.StopResponse{
			StopID:    s.ID,
			Latitude:  s.Coordinates.Lat,
			Longitude: s.Coordinates.Lon,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
