package analysis

import (
	"context"
	"math"
	"sync"

	"github.com/bcdannyboy/optlab/models"
	"github.com/bcdannyboy/optlab/pricing"
	mpb "github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"
)

const jobBatchSize = 1000

// QuoteResult holds the analysis of one quote. Greeks are evaluated at the
// implied volatility; ModelPrice at the reference volatility.
type QuoteResult struct {
	Quote      models.OptionQuote
	Implied    pricing.IVResult
	Greeks     models.BSMResult
	ModelPrice float64
	Intrinsic  float64
	Extrinsic  float64
	Err        error
}

type job struct {
	index int
	quote models.OptionQuote
}

// PriceQuotes analyzes quotes on a worker pool. Results keep the input
// order. A quote that cannot be solved carries its error in Err.
func (a *Analyzer) PriceQuotes(ctx context.Context, quotes []models.OptionQuote, refVol float64) ([]QuoteResult, error) {
	if len(quotes) == 0 {
		return nil, nil
	}

	numWorkers := a.workers()
	a.log.Debug().Int("quotes", len(quotes)).Int("workers", numWorkers).Msg("pricing quotes")

	p := mpb.NewWithContext(ctx, mpb.WithWidth(64), mpb.WithOutput(a.progress))
	bar := p.AddBar(int64(len(quotes)),
		mpb.PrependDecorators(
			decor.Name("Pricing"),
			decor.Percentage(decor.WCSyncSpace),
		),
		mpb.AppendDecorators(
			decor.CountersNoUnit("(%d / %d)", decor.WCSyncSpace),
		),
	)

	results := make([]QuoteResult, len(quotes))
	jobs := make(chan job, jobBatchSize)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.index] = a.priceQuote(j.quote, refVol)
				bar.Increment()
			}
		}()
	}

feed:
	for i, q := range quotes {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- job{index: i, quote: q}:
		}
	}
	close(jobs)
	wg.Wait()

	if !bar.Completed() {
		bar.Abort(false)
	}
	p.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (a *Analyzer) priceQuote(q models.OptionQuote, refVol float64) QuoteResult {
	res := QuoteResult{Quote: q}
	if err := q.Validate(); err != nil {
		res.Err = err
		a.log.Warn().Err(err).Str("symbol", q.Symbol).Msg("invalid quote")
		return res
	}

	res.Intrinsic = pricing.Intrinsic(q)
	res.Extrinsic = math.Max(0, q.MarketPrice-res.Intrinsic)

	if refVol > 0 {
		if price, err := pricing.Price(q, refVol); err == nil {
			res.ModelPrice = price
		}
	}

	iv, err := a.solver.Solve(q, q.MarketPrice)
	if err != nil {
		res.Err = err
		a.log.Warn().
			Err(err).
			Str("symbol", q.Symbol).
			Stringer("type", q.Type).
			Float64("strike", q.Strike).
			Float64("expiry", q.Expiry).
			Float64("price", q.MarketPrice).
			Msg("implied volatility failed")
		return res
	}
	res.Implied = iv

	greeks, err := pricing.Calculate(q, iv.Volatility)
	if err != nil {
		res.Err = err
		return res
	}
	greeks.ImpliedVolatility = iv.Volatility
	res.Greeks = greeks
	return res
}
