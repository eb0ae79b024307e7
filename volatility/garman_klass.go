package volatility

import (
	"math"

	"github.com/bcdannyboy/optlab/models"
)

const garmanKlassCloseWeight = 2*math.Ln2 - 1

// GarmanKlass averages 0.5·ln(H/L)² − (2ln2 − 1)·ln(C/O)² over the bars.
func GarmanKlass(series models.PriceSeries, annualization float64) (float64, error) {
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
		hl := math.Log(b.High / b.Low)
		co := math.Log(b.Close / b.Open)
		sum += 0.5*hl*hl - garmanKlassCloseWeight*co*co
	}
	return annualize(sum/float64(series.Len()), annualization)
}
