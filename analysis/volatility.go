package analysis

import (
	"fmt"

	"github.com/bcdannyboy/optlab/models"
	"github.com/bcdannyboy/optlab/volatility"
)

// VolatilityReport collects the historical estimates for one series.
type VolatilityReport struct {
	Estimates []models.VolatilityEstimate
	Trailing  []models.VolatilityEstimate
	Rolling   []models.VolatilityEstimate
	// Drift is the annualized mean simple return.
	Drift float64
}

// Volatility runs every configured estimator over the full series, plus the
// trailing and rolling views. An estimator that fails is logged and skipped;
// the call fails only when none succeed.
func (a *Analyzer) Volatility(series models.PriceSeries) (*VolatilityReport, error) {
	ann := a.cfg.Volatility.Annualization
	report := &VolatilityReport{}

	for _, e := range a.cfg.Estimators() {
		log := a.log.With().Str("estimator", string(e)).Logger()

		est, err := volatility.Estimate(series, e, ann)
		if err != nil {
			log.Warn().Err(err).Msg("estimate skipped")
			continue
		}
		report.Estimates = append(report.Estimates, est)

		if a.cfg.Volatility.Trailing {
			trailing, err := volatility.Trailing(series, e, ann)
			if err != nil {
				log.Warn().Err(err).Msg("trailing estimates skipped")
			}
			report.Trailing = append(report.Trailing, trailing...)
		}

		if series.Len() >= a.cfg.Volatility.Window {
			rolling, err := volatility.Rolling(series, e, a.cfg.Volatility.Window, ann)
			if err != nil {
				log.Warn().Err(err).Msg("rolling estimates skipped")
			}
			report.Rolling = append(report.Rolling, rolling...)
		}
	}
	if len(report.Estimates) == 0 {
		return nil, fmt.Errorf("%w: no estimator produced a value for %d bars", models.ErrInsufficientData, series.Len())
	}

	drift, err := volatility.Drift(series)
	if err != nil {
		a.log.Debug().Err(err).Msg("drift unavailable")
	}
	report.Drift = drift

	a.log.Debug().
		Int("estimates", len(report.Estimates)).
		Int("trailing", len(report.Trailing)).
		Int("rolling", len(report.Rolling)).
		Msg("volatility estimated")
	return report, nil
}
