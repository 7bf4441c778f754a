package dto

type StopResponse struct {
	StopID    string  `json:"stop_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type ListStopsResponse struct {
	Depot int            `json:"depot"`
	Stops []StopResponse `json:"stops"`
}
