package volatility

import (
	"errors"
	"fmt"

	"github.com/bcdannyboy/optlab/models"
)

// Period is a named trailing window measured in bars.
type Period struct {
	Name string
	Days int
}

// TrailingPeriods are the standard lookbacks in trading days.
func TrailingPeriods() []Period {
	return []Period{
		{"1w", 5},
		{"2w", 10},
		{"1m", 21},
		{"3m", 63},
		{"6m", 126},
		{"1y", 252},
		{"3y", 756},
		{"5y", 1260},
		{"10y", 2520},
	}
}

// Trailing evaluates e over every standard trailing period the series is
// long enough for. Periods the estimator needs more data for are skipped.
func Trailing(series models.PriceSeries, e models.Estimator, annualization float64) ([]models.VolatilityEstimate, error) {
	var results []models.VolatilityEstimate
	for _, period := range TrailingPeriods() {
		if series.Len() < period.Days {
			break
		}
		est, err := Estimate(series.Tail(period.Days), e, annualization)
		if errors.Is(err, models.ErrInsufficientData) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("period %s: %w", period.Name, err)
		}
		est.Period = period.Name
		results = append(results, est)
	}
	return results, nil
}

// Rolling returns one estimate per full window, each ending at successive
// bars, in chronological order.
func Rolling(series models.PriceSeries, e models.Estimator, window int, annualization float64) ([]models.VolatilityEstimate, error) {
	if window < 2 {
		return nil, fmt.Errorf("%w: rolling window must be at least 2, got %d", models.ErrInvalidInput, window)
	}
	if err := checkLength(series, window); err != nil {
		return nil, err
	}

	label := fmt.Sprintf("rolling_%d", window)
	results := make([]models.VolatilityEstimate, 0, series.Len()-window+1)
	for end := window; end <= series.Len(); end++ {
		est, err := Estimate(series.Window(end-window, end), e, annualization)
		if err != nil {
			return nil, fmt.Errorf("window ending at bar %d: %w", end-1, err)
		}
		est.Period = label
		results = append(results, est)
	}
	return results, nil
}
