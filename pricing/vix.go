package pricing

import (
	"fmt"
	"math"
	"sort"

	"github.com/bcdannyboy/optlab/models"
	"gonum.org/v1/gonum/floats"
)

// VolatilityIndex computes a model-free implied volatility from strips of
// out-of-the-money puts (strike below the forward) and calls (strike above
// it), in the manner of the CBOE VIX. tau is the target horizon in years and
// quote market prices are used as option premia.
func VolatilityIndex(puts, calls []models.OptionQuote, spot, rate, tau float64) (models.VolatilityEstimate, error) {
	if !(spot > 0) || math.IsInf(spot, 0) {
		return models.VolatilityEstimate{}, fmt.Errorf("%w: spot must be positive, got %v", models.ErrInvalidInput, spot)
	}
	if !(tau > 0) || math.IsInf(tau, 0) {
		return models.VolatilityEstimate{}, fmt.Errorf("%w: tau must be positive, got %v", models.ErrInvalidInput, tau)
	}
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return models.VolatilityEstimate{}, fmt.Errorf("%w: rate must be finite, got %v", models.ErrInvalidInput, rate)
	}

	forward := math.Exp(rate*tau) * spot

	otmPuts, err := strip(puts, models.Put, func(k float64) bool { return k < forward })
	if err != nil {
		return models.VolatilityEstimate{}, err
	}
	otmCalls, err := strip(calls, models.Call, func(k float64) bool { return k > forward })
	if err != nil {
		return models.VolatilityEstimate{}, err
	}
	if len(otmPuts) < 2 || len(otmCalls) < 2 {
		return models.VolatilityEstimate{}, fmt.Errorf("%w: need two out-of-the-money strikes per side, got %d puts and %d calls",
			models.ErrInsufficientData, len(otmPuts), len(otmCalls))
	}

	terms := make([]float64, 0, len(otmPuts)+len(otmCalls)-2)
	for i := 0; i < len(otmPuts)-1; i++ {
		terms = append(terms, otmPuts[i].MarketPrice*(1/otmPuts[i].Strike-1/otmPuts[i+1].Strike))
	}
	for i := 1; i < len(otmCalls); i++ {
		terms = append(terms, otmCalls[i].MarketPrice*(1/otmCalls[i-1].Strike-1/otmCalls[i].Strike))
	}

	variance := 2 * math.Exp(rate*tau) / tau * floats.Sum(terms)
	return models.VolatilityEstimate{
		Value:        math.Sqrt(variance),
		Estimator:    models.VolatilityIndex,
		Period:       fmt.Sprintf("%.0fd", math.Round(tau*365)),
		Observations: len(otmPuts) + len(otmCalls),
	}, nil
}

func strip(quotes []models.OptionQuote, want models.OptionType, keep func(float64) bool) ([]models.OptionQuote, error) {
	out := make([]models.OptionQuote, 0, len(quotes))
	for _, q := range quotes {
		if q.Type != want {
			return nil, fmt.Errorf("%w: %s quote at strike %v in %s strip", models.ErrInvalidInput, q.Type, q.Strike, want)
		}
		if !(q.Strike > 0) || math.IsInf(q.Strike, 0) {
			return nil, fmt.Errorf("%w: strike must be positive, got %v", models.ErrInvalidInput, q.Strike)
		}
		if !(q.MarketPrice >= 0) || math.IsInf(q.MarketPrice, 0) {
			return nil, fmt.Errorf("%w: premium must be non-negative, got %v at strike %v", models.ErrInvalidInput, q.MarketPrice, q.Strike)
		}
		if keep(q.Strike) {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Strike < out[j].Strike })
	return out, nil
}
