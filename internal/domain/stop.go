package domain

import (
	"fmt"
	"strings"
)

// Represents a single place a vehicle has to visit.
// The ID is opaque to the planner and only has to be unique within a StopSet.
type Stop struct {
	ID          string      `json:"stop_id"`
	Coordinates Coordinates `json:"coordinates"`
}

// StopSet is an ordered, immutable sequence of stops with a designated depot.
// Stop indices used by DistanceMatrix and RoutePlan refer to positions in this set.
type StopSet struct {
	stops []Stop
	depot int
}

// NewStopSet copies stops and validates the set: at least one stop,
// non-empty unique ids and a depot index inside the sequence.
// Coordinates are checked later by the matrix builder.
func NewStopSet(stops []Stop, depot int) (StopSet, error) {
	if len(stops) == 0 {
		return StopSet{}, fmt.Errorf("%w: no stops", ErrInvalidStopSet)
	}
	if depot < 0 || depot >= len(stops) {
		return StopSet{}, fmt.Errorf("%w: depot index %d out of range [0, %d)", ErrInvalidStopSet, depot, len(stops))
	}

	seen := make(map[string]int, len(stops))
	for i, s := range stops {
		id := strings.TrimSpace(s.ID)
		if id == "" {
			return StopSet{}, fmt.Errorf("%w: stop at index %d has empty id", ErrInvalidStopSet, i)
		}
		if j, ok := seen[id]; ok {
			return StopSet{}, fmt.Errorf("%w: stop id %q repeated at index %d and %d", ErrInvalidStopSet, id, j, i)
		}
		seen[id] = i
	}

	cp := make([]Stop, len(stops))
	copy(cp, stops)
	return StopSet{stops: cp, depot: depot}, nil
}

func (s StopSet) Len() int   { return len(s.stops) }
func (s StopSet) Depot() int { return s.depot }

// At returns the stop at index i. It panics when i is out of range, like a slice.
func (s StopSet) At(i int) Stop { return s.stops[i] }

// Stops returns a copy of the underlying sequence.
func (s StopSet) Stops() []Stop {
	cp := make([]Stop, len(s.stops))
	copy(cp, s.stops)
	return cp
}

// HasWork reports whether there is at least one stop besides the depot.
func (s StopSet) HasWork() bool { return len(s.stops) > 1 }
