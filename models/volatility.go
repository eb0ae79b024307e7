package models

import (
	"fmt"
	"time"
)

type Estimator string

const (
	Historical      Estimator = "historical"
	GarmanKlass     Estimator = "garman_klass"
	Parkinson       Estimator = "parkinson"
	RogersSatchell  Estimator = "rogers_satchell"
	YangZhang       Estimator = "yang_zhang"
	GARCH           Estimator = "garch"
	Realized        Estimator = "realized"
	Implied         Estimator = "implied"
	VolatilityIndex Estimator = "volatility_index"
)

// ParseEstimator resolves the name used in config files.
func ParseEstimator(s string) (Estimator, error) {
	switch e := Estimator(s); e {
	case Historical, GarmanKlass, Parkinson, RogersSatchell, YangZhang, GARCH, Realized, Implied, VolatilityIndex:
		return e, nil
	default:
		return "", fmt.Errorf("%w: unknown estimator %q", ErrInvalidInput, s)
	}
}

// VolatilityEstimate is an annualized volatility tagged with how and over
// which window it was produced.
type VolatilityEstimate struct {
	Value        float64   `json:"value"`
	Estimator    Estimator `json:"estimator"`
	Period       string    `json:"period,omitempty"`
	Start        time.Time `json:"start,omitempty"`
	End          time.Time `json:"end,omitempty"`
	Observations int       `json:"observations"`
}
