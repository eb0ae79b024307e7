package volatility

import (
	"math"

	"github.com/bcdannyboy/optlab/models"
)

// RogersSatchell is drift independent:
// mean of ln(H/C)·ln(H/O) + ln(L/C)·ln(L/O).
func RogersSatchell(series models.PriceSeries, annualization float64) (float64, error) {
	if err := checkAnnualization(annualization); err != nil {
		return 0, err
	}
	if err := checkLength(series, 1); err != nil {
		return 0, err
	}
	if err := checkBars(series); err != nil {
		return 0, err
	}
	return annualize(rogersSatchellVariance(series.Bars), annualization)
}

func rogersSatchellVariance(bars []models.Bar) float64 {
	sum := 0.0
	for _, b := range bars {
		sum += math.Log(b.High/b.Close)*math.Log(b.High/b.Open) +
			math.Log(b.Low/b.Close)*math.Log(b.Low/b.Open)
	}
	return sum / float64(len(bars))
}
