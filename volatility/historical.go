package volatility

import (
	"fmt"
	"math"

	"github.com/bcdannyboy/optlab/models"
	"gonum.org/v1/gonum/stat"
)

// Historical is the close-to-close estimator: the sample standard deviation
// of log returns scaled by √annualization. A two-bar series has a single
// return, for which the zero-mean root mean square is used instead.
func Historical(series models.PriceSeries, annualization float64) (float64, error) {
	if err := checkAnnualization(annualization); err != nil {
		return 0, err
	}
	if err := checkLength(series, 2); err != nil {
		return 0, err
	}
	returns, err := LogReturns(series)
	if err != nil {
		return 0, err
	}

	var stdDev float64
	if len(returns) == 1 {
		stdDev = math.Abs(returns[0])
	} else {
		stdDev = stat.StdDev(returns, nil)
	}
	return stdDev * math.Sqrt(annualization), nil
}

// LogReturns returns ln(close_i / close_{i-1}) for consecutive bars.
func LogReturns(series models.PriceSeries) ([]float64, error) {
	if series.Len() < 2 {
		return nil, nil
	}
	returns := make([]float64, series.Len()-1)
	for i := 1; i < series.Len(); i++ {
		prevClose := series.Bars[i-1].Close
		currClose := series.Bars[i].Close
		if !(prevClose > 0) || !(currClose > 0) || math.IsInf(prevClose, 0) || math.IsInf(currClose, 0) {
			return nil, fmt.Errorf("%w: closes must be positive, got %v and %v at bar %d", models.ErrInvalidInput, prevClose, currClose, i)
		}
		returns[i-1] = math.Log(currClose / prevClose)
	}
	return returns, nil
}
