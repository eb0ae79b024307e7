package pricing

import (
	"errors"
	"math"
	"testing"

	"github.com/bcdannyboy/optlab/models"
)

func strikes(typ models.OptionType, prices map[float64]float64) []models.OptionQuote {
	out := make([]models.OptionQuote, 0, len(prices))
	for k, p := range prices {
		out = append(out, models.OptionQuote{Strike: k, Type: typ, MarketPrice: p})
	}
	return out
}

func TestVolatilityIndex(t *testing.T) {
	spot, rate, tau := 100.0, 0.0, 30.0/365
	puts := strikes(models.Put, map[float64]float64{80: 0.2, 90: 0.8, 95: 1.6, 105: 7})
	calls := strikes(models.Call, map[float64]float64{95: 7, 105: 1.5, 110: 0.7, 120: 0.1})

	est, err := VolatilityIndex(puts, calls, spot, rate, tau)
	if err != nil {
		t.Fatalf("index err: %v", err)
	}

	sum := 0.2*(1.0/80-1.0/90) + 0.8*(1.0/90-1.0/95) +
		0.7*(1.0/105-1.0/110) + 0.1*(1.0/110-1.0/120)
	want := math.Sqrt(2 / tau * sum)

	if !almostEqual(est.Value, want, 1e-12) {
		t.Errorf("index: got %v want %v", est.Value, want)
	}
	if est.Estimator != models.VolatilityIndex || est.Observations != 6 || est.Period != "30d" {
		t.Errorf("unexpected tags: %+v", est)
	}
}

func TestVolatilityIndex_Errors(t *testing.T) {
	puts := strikes(models.Put, map[float64]float64{90: 0.8})
	calls := strikes(models.Call, map[float64]float64{110: 0.7, 120: 0.1})

	if _, err := VolatilityIndex(puts, calls, 100, 0.01, 0.1); !errors.Is(err, models.ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
	if _, err := VolatilityIndex(calls, calls, 100, 0.01, 0.1); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for mixed strip, got %v", err)
	}
	if _, err := VolatilityIndex(puts, calls, 100, 0.01, 0); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for zero tau, got %v", err)
	}
}
