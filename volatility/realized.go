package volatility

import (
	"fmt"
	"math"

	"github.com/bcdannyboy/optlab/models"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const daysPerYear = 365.0

// Realized is the square root of the sum of squared simple returns over the
// series. It is a total over the window and is not annualized.
func Realized(series models.PriceSeries) (float64, error) {
	returns, err := simpleReturns(series)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(floats.Dot(returns, returns)), nil
}

// Drift is the historical trend estimator: the mean of simple returns divided
// by the elapsed time between bars in years (365-day year).
func Drift(series models.PriceSeries) (float64, error) {
	returns, err := simpleReturns(series)
	if err != nil {
		return 0, err
	}
	rates := make([]float64, len(returns))
	for i := range returns {
		dt := series.Bars[i+1].Time.Sub(series.Bars[i].Time).Hours() / 24 / daysPerYear
		if dt <= 0 {
			return 0, fmt.Errorf("%w: bar %d is not after bar %d", models.ErrInvalidInput, i+1, i)
		}
		rates[i] = returns[i] / dt
	}
	return stat.Mean(rates, nil), nil
}

func simpleReturns(series models.PriceSeries) ([]float64, error) {
	if err := checkLength(series, 2); err != nil {
		return nil, err
	}
	returns := make([]float64, series.Len()-1)
	for i := 1; i < series.Len(); i++ {
		prev, curr := series.Bars[i-1].Close, series.Bars[i].Close
		if !(prev > 0) || math.IsInf(prev, 0) || math.IsNaN(curr) || math.IsInf(curr, 0) {
			return nil, fmt.Errorf("%w: closes must be positive, got %v and %v at bar %d", models.ErrInvalidInput, prev, curr, i)
		}
		returns[i-1] = curr/prev - 1
	}
	return returns, nil
}
