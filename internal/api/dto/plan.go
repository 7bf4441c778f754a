package dto

import "time"

type StopRequest struct {
	StopID    string  `json:"stop_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PlanRequest is the body of POST /plans. Stops, when present, replace the stored stop list.
type PlanRequest struct {
	NumVehicles *int          `json:"num_vehicles"`
	Depot       int           `json:"depot"`
	Improve     bool          `json:"improve"`
	Stops       []StopRequest `json:"stops"`
}

type RouteStopResponse struct {
	Index     int     `json:"index"`
	StopID    string  `json:"stop_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	LegKm     float64 `json:"leg_km"`
}

type RouteResponse struct {
	Vehicle  int                 `json:"vehicle"`
	Sequence []int               `json:"sequence"`
	TotalKm  float64             `json:"total_km"`
	Stops    []RouteStopResponse `json:"stops"`
}

type PlanResponse struct {
	PlanID      string          `json:"plan_id"`
	CreatedAt   time.Time       `json:"created_at"`
	NumVehicles int             `json:"num_vehicles"`
	Depot       int             `json:"depot"`
	Improved    bool            `json:"improved"`
	Empty       bool            `json:"empty"`
	Message     string          `json:"message,omitempty"`
	TotalKm     float64         `json:"total_km"`
	Routes      []RouteResponse `json:"routes"`
}
