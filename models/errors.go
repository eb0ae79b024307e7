package models

import "errors"

var (
	// ErrInvalidInput is returned for non-positive prices, volatilities or
	// times, inverted high/low ranges and unknown option types.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInsufficientData is returned when a series is too short for an estimator.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrNoConvergence is returned when a root find cannot bracket or converge.
	ErrNoConvergence = errors.New("no convergence")
)
