package volatility

import (
	"math"

	"github.com/bcdannyboy/optlab/models"
)

// Parkinson uses only the high/low range: Σ ln(H/L)² / (4n·ln2).
func Parkinson(series models.PriceSeries, annualization float64) (float64, error) {
	if err := checkAnnualization(annualization); err != nil {
		return 0, err
	}
	if err := checkLength(series, 1); err != nil {
		return 0, err
	}
	if err := checkBars(series); err != nil {
		return 0, err
	}

	sum := 0.0
	for _, b := range series.Bars {
		logRatio := math.Log(b.High / b.Low)
		sum += logRatio * logRatio
	}
	return annualize(sum/(4*float64(series.Len())*math.Ln2), annualization)
}
