package domain

import "errors"

var (
	// ErrInvalidCoordinate marks a latitude/longitude that is non-finite or out of range.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrInvalidConfiguration marks a solver call with a bad vehicle count, depot or matrix.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidStopSet marks an empty stop list, duplicate ids or a bad depot index.
	ErrInvalidStopSet = errors.New("invalid stop set")
)
