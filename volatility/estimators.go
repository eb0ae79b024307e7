// Package volatility estimates realized volatility from price series.
//
// Every estimator is a pure function of the series and an annualization
// factor (periods per year, e.g. 252 for daily bars).
package volatility

import (
	"fmt"
	"math"

	"github.com/bcdannyboy/optlab/models"
)

// Func is the shape shared by every series estimator.
type Func func(series models.PriceSeries, annualization float64) (float64, error)

// For returns the estimator function for e.
func For(e models.Estimator) (Func, error) {
	switch e {
	case models.Historical:
		return Historical, nil
	case models.GarmanKlass:
		return GarmanKlass, nil
	case models.Parkinson:
		return Parkinson, nil
	case models.RogersSatchell:
		return RogersSatchell, nil
	case models.YangZhang:
		return YangZhang, nil
	case models.GARCH:
		return GARCH, nil
	case models.Realized:
		return func(series models.PriceSeries, _ float64) (float64, error) {
			return Realized(series)
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q is not a price series estimator", models.ErrInvalidInput, e)
	}
}

// Estimate runs estimator e over the whole series and tags the result.
func Estimate(series models.PriceSeries, e models.Estimator, annualization float64) (models.VolatilityEstimate, error) {
	fn, err := For(e)
	if err != nil {
		return models.VolatilityEstimate{}, err
	}
	value, err := fn(series, annualization)
	if err != nil {
		return models.VolatilityEstimate{}, fmt.Errorf("%s: %w", e, err)
	}
	start, end := series.Span()
	return models.VolatilityEstimate{
		Value:        value,
		Estimator:    e,
		Start:        start,
		End:          end,
		Observations: series.Len(),
	}, nil
}

func checkAnnualization(annualization float64) error {
	if !(annualization > 0) || math.IsInf(annualization, 0) {
		return fmt.Errorf("%w: annualization factor must be positive, got %v", models.ErrInvalidInput, annualization)
	}
	return nil
}

func checkLength(series models.PriceSeries, min int) error {
	if series.Len() < min {
		return fmt.Errorf("%w: need at least %d bars, got %d", models.ErrInsufficientData, min, series.Len())
	}
	return nil
}

// checkBar validates the OHLC fields range estimators take logs of.
func checkBar(i int, b models.Bar) error {
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: bar %d has non-finite price", models.ErrInvalidInput, i)
		}
	}
	switch {
	case b.Open <= 0:
		return fmt.Errorf("%w: bar %d open must be positive, got %v", models.ErrInvalidInput, i, b.Open)
	case b.Close <= 0:
		return fmt.Errorf("%w: bar %d close must be positive, got %v", models.ErrInvalidInput, i, b.Close)
	case b.Low <= 0:
		return fmt.Errorf("%w: bar %d low must be positive, got %v", models.ErrInvalidInput, i, b.Low)
	case b.High < b.Low:
		return fmt.Errorf("%w: bar %d high %v below low %v", models.ErrInvalidInput, i, b.High, b.Low)
	}
	return nil
}

func checkBars(series models.PriceSeries) error {
	for i, b := range series.Bars {
		if err := checkBar(i, b); err != nil {
			return err
		}
	}
	return nil
}

// annualize takes the square root of a per-period variance and scales it.
func annualize(variance, annualization float64) (float64, error) {
	if variance < 0 || math.IsNaN(variance) {
		return 0, fmt.Errorf("%w: negative variance %v", models.ErrInvalidInput, variance)
	}
	return math.Sqrt(variance * annualization), nil
}
