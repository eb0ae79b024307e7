package volatility

import (
	"math"

	"github.com/bcdannyboy/optlab/models"
	"gonum.org/v1/gonum/stat"
)

// YangZhang combines overnight, open-to-close and Rogers-Satchell variances
// over the periods after the first bar, whose close seeds the first
// overnight return.
func YangZhang(series models.PriceSeries, annualization float64) (float64, error) {
	if err := checkAnnualization(annualization); err != nil {
		return 0, err
	}
	if err := checkLength(series, 3); err != nil {
		return 0, err
	}
	if err := checkBars(series); err != nil {
		return 0, err
	}

	bars := series.Bars
	m := len(bars) - 1
	overnight := make([]float64, m)
	openClose := make([]float64, m)
	for i := 1; i < len(bars); i++ {
		overnight[i-1] = math.Log(bars[i].Open / bars[i-1].Close)
		openClose[i-1] = math.Log(bars[i].Close / bars[i].Open)
	}

	k := 0.34 / (1.34 + float64(m+1)/float64(m-1))
	variance := stat.Variance(overnight, nil) +
		k*stat.Variance(openClose, nil) +
		(1-k)*rogersSatchellVariance(bars[1:])

	return annualize(variance, annualization)
}
