package analysis

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/bcdannyboy/optlab/config"
	"github.com/bcdannyboy/optlab/models"
	"github.com/bcdannyboy/optlab/pricing"
	"github.com/bcdannyboy/optlab/volatility"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/cpu"
	"golang.org/x/sync/errgroup"
)

// Analyzer prices option quotes and estimates volatility for one underlying.
type Analyzer struct {
	cfg      *config.Config
	log      zerolog.Logger
	solver   pricing.Solver
	progress io.Writer
}

// Result is everything one run produces.
type Result struct {
	Symbol     string
	Spot       float64
	Valuation  time.Time
	Reference  *models.VolatilityEstimate
	Volatility *VolatilityReport
	Quotes     []QuoteResult
	Index      *models.VolatilityEstimate
	Surface    *pricing.Surface
}

func New(cfg *config.Config, log zerolog.Logger) *Analyzer {
	progress := io.Writer(os.Stderr)
	if cfg.Output.Quiet {
		progress = io.Discard
	}
	return &Analyzer{
		cfg: cfg,
		log: log,
		solver: pricing.Solver{
			Lower:         cfg.Pricing.IVLower,
			Upper:         cfg.Pricing.IVUpper,
			Tolerance:     cfg.Pricing.Tolerance,
			MaxIterations: cfg.Pricing.MaxIterations,
		},
		progress: progress,
	}
}

// ResolveSpot returns the configured spot, or the last close of series.
func ResolveSpot(cfg *config.Config, series models.PriceSeries) (float64, error) {
	if cfg.Data.Spot > 0 {
		return cfg.Data.Spot, nil
	}
	if series.Len() == 0 {
		return 0, fmt.Errorf("%w: no spot configured and no price history to take it from", models.ErrInvalidInput)
	}
	return series.Bars[series.Len()-1].Close, nil
}

// Run estimates volatility over series and prices calls and puts against
// the reference estimate. Either input may be empty. Quote-level failures
// are recorded on the quote; only cancellation and configuration errors
// abort the run.
func (a *Analyzer) Run(ctx context.Context, series models.PriceSeries, spot float64, calls, puts []models.OptionQuote) (*Result, error) {
	start := time.Now()
	result := &Result{
		Symbol:    a.cfg.Data.Symbol,
		Spot:      spot,
		Valuation: a.cfg.Valuation(),
	}

	refVol := 0.0
	if series.Len() > 0 {
		ref, err := a.Reference(series)
		if err != nil {
			a.log.Warn().Err(err).Str("estimator", a.cfg.Volatility.Reference).Msg("reference volatility unavailable")
		} else {
			result.Reference = &ref
			refVol = ref.Value
		}
	}

	quotes := make([]models.OptionQuote, 0, len(calls)+len(puts))
	quotes = append(quotes, calls...)
	quotes = append(quotes, puts...)

	g, gctx := errgroup.WithContext(ctx)
	if series.Len() > 0 {
		g.Go(func() error {
			report, err := a.Volatility(series)
			if err != nil {
				a.log.Warn().Err(err).Msg("volatility estimation failed")
				return nil
			}
			result.Volatility = report
			return nil
		})
	}
	if len(quotes) > 0 {
		g.Go(func() error {
			priced, err := a.PriceQuotes(gctx, quotes, refVol)
			if err != nil {
				return err
			}
			result.Quotes = priced
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(calls) > 0 && len(puts) > 0 {
		index, err := a.Index(calls, puts, spot)
		if err != nil {
			a.log.Warn().Err(err).Msg("volatility index unavailable")
		} else {
			result.Index = &index
		}
	}
	if len(result.Quotes) > 0 {
		surface, err := a.Surface(result.Quotes)
		if err != nil {
			a.log.Warn().Err(err).Msg("implied volatility surface unavailable")
		} else {
			result.Surface = surface
		}
	}

	a.log.Info().
		Str("symbol", result.Symbol).
		Int("quotes", len(result.Quotes)).
		Dur("elapsed", time.Since(start)).
		Msg("analysis complete")
	return result, nil
}

// Reference is the volatility model prices are quoted against.
func (a *Analyzer) Reference(series models.PriceSeries) (models.VolatilityEstimate, error) {
	e, err := models.ParseEstimator(a.cfg.Volatility.Reference)
	if err != nil {
		return models.VolatilityEstimate{}, err
	}
	return volatility.Estimate(series, e, a.cfg.Volatility.Annualization)
}

// Index computes the model-free volatility index over the configured horizon.
func (a *Analyzer) Index(calls, puts []models.OptionQuote, spot float64) (models.VolatilityEstimate, error) {
	return pricing.VolatilityIndex(puts, calls, spot, a.cfg.Pricing.Rate, a.cfg.IndexTau())
}

// Surface grids the implied volatilities of converged quotes.
func (a *Analyzer) Surface(results []QuoteResult) (*pricing.Surface, error) {
	points := make([]pricing.SurfacePoint, 0, len(results))
	for _, r := range results {
		if r.Err != nil || !r.Implied.Converged {
			continue
		}
		points = append(points, pricing.SurfacePoint{
			Strike:     r.Quote.Strike,
			Expiry:     r.Quote.Expiry,
			Volatility: r.Implied.Volatility,
		})
	}
	return pricing.NewSurface(points)
}

func (a *Analyzer) workers() int {
	if a.cfg.Workers > 0 {
		return a.cfg.Workers
	}
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		return runtime.NumCPU()
	}
	return n
}
