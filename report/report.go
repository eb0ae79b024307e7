package report

import (
	"math"
	"time"

	"github.com/bcdannyboy/optlab/analysis"
	"github.com/bcdannyboy/optlab/models"
	"github.com/shopspring/decimal"
)

const (
	pricePlaces = 4
	volPlaces   = 6
)

// Report is the JSON document written at the end of a run. Monetary fields
// are decimals rounded to four places; volatilities and Greeks are
// rounded to six places.
type Report struct {
	Symbol        string     `json:"symbol"`
	GeneratedAt   time.Time  `json:"generated_at"`
	ValuationDate string     `json:"valuation_date,omitempty"`
	Spot          string     `json:"spot"`
	Reference     *Estimate  `json:"reference_volatility,omitempty"`
	Drift         *float64   `json:"drift,omitempty"`
	Estimates     []Estimate `json:"estimates,omitempty"`
	Trailing      []Estimate `json:"trailing,omitempty"`
	Index         *Estimate  `json:"volatility_index,omitempty"`
	Quotes        []Quote    `json:"quotes,omitempty"`
	FailedQuotes  int        `json:"failed_quotes"`
	Surface       *Surface   `json:"surface,omitempty"`
}

type Estimate struct {
	Estimator    models.Estimator `json:"estimator"`
	Period       string           `json:"period,omitempty"`
	Value        float64          `json:"value"`
	Start        string           `json:"start,omitempty"`
	End          string           `json:"end,omitempty"`
	Observations int              `json:"observations"`
}

type Quote struct {
	Symbol            string            `json:"symbol,omitempty"`
	Type              models.OptionType `json:"type"`
	Strike            decimal.Decimal   `json:"strike"`
	Expiry            float64           `json:"expiry"`
	MarketPrice       decimal.Decimal   `json:"market_price"`
	ModelPrice        *decimal.Decimal  `json:"model_price,omitempty"`
	Intrinsic         decimal.Decimal   `json:"intrinsic"`
	Extrinsic         decimal.Decimal   `json:"extrinsic"`
	ImpliedVolatility *float64          `json:"implied_volatility,omitempty"`
	Iterations        int               `json:"iterations,omitempty"`
	Greeks            *Greeks           `json:"greeks,omitempty"`
	Error             string            `json:"error,omitempty"`
}

type Greeks struct {
	Delta           float64 `json:"delta"`
	Gamma           float64 `json:"gamma"`
	Theta           float64 `json:"theta"`
	Vega            float64 `json:"vega"`
	Rho             float64 `json:"rho"`
	ShadowUpGamma   float64 `json:"shadow_up_gamma"`
	ShadowDownGamma float64 `json:"shadow_down_gamma"`
	SkewGamma       float64 `json:"skew_gamma"`
}

type Surface struct {
	Expiries []float64   `json:"expiries"`
	Strikes  []float64   `json:"strikes"`
	Vols     [][]float64 `json:"vols"`
}

// Build flattens an analysis result into a report.
func Build(result *analysis.Result, generatedAt time.Time) *Report {
	r := &Report{
		Symbol:      result.Symbol,
		GeneratedAt: generatedAt.UTC(),
		Spot:        money(result.Spot).StringFixed(pricePlaces),
	}
	if !result.Valuation.IsZero() {
		r.ValuationDate = result.Valuation.Format("2006-01-02")
	}
	if result.Reference != nil {
		est := estimate(*result.Reference)
		r.Reference = &est
	}
	if result.Index != nil {
		est := estimate(*result.Index)
		r.Index = &est
	}
	if v := result.Volatility; v != nil {
		drift := vol(v.Drift)
		r.Drift = &drift
		r.Estimates = estimates(v.Estimates)
		r.Trailing = estimates(v.Trailing)
	}

	for _, q := range result.Quotes {
		if q.Err != nil {
			r.FailedQuotes++
		}
		r.Quotes = append(r.Quotes, quote(q))
	}
	if s := result.Surface; s != nil {
		r.Surface = &Surface{Expiries: s.Expiries, Strikes: s.Strikes, Vols: make([][]float64, len(s.Vols))}
		for i, row := range s.Vols {
			r.Surface.Vols[i] = make([]float64, len(row))
			for j, v := range row {
				r.Surface.Vols[i][j] = vol(v)
			}
		}
	}
	return r
}

func quote(q analysis.QuoteResult) Quote {
	out := Quote{
		Symbol:      q.Quote.Symbol,
		Type:        q.Quote.Type,
		Strike:      money(q.Quote.Strike),
		Expiry:      vol(q.Quote.Expiry),
		MarketPrice: money(q.Quote.MarketPrice),
		Intrinsic:   money(q.Intrinsic),
		Extrinsic:   money(q.Extrinsic),
	}
	if q.ModelPrice > 0 {
		p := money(q.ModelPrice)
		out.ModelPrice = &p
	}
	if q.Err != nil {
		out.Error = q.Err.Error()
		return out
	}

	iv := vol(q.Implied.Volatility)
	out.ImpliedVolatility = &iv
	out.Iterations = q.Implied.Iterations
	out.Greeks = &Greeks{
		Delta:           vol(q.Greeks.Delta),
		Gamma:           vol(q.Greeks.Gamma),
		Theta:           vol(q.Greeks.Theta),
		Vega:            vol(q.Greeks.Vega),
		Rho:             vol(q.Greeks.Rho),
		ShadowUpGamma:   vol(q.Greeks.ShadowUpGamma),
		ShadowDownGamma: vol(q.Greeks.ShadowDownGamma),
		SkewGamma:       vol(q.Greeks.SkewGamma),
	}
	return out
}

func estimates(in []models.VolatilityEstimate) []Estimate {
	if len(in) == 0 {
		return nil
	}
	out := make([]Estimate, len(in))
	for i, e := range in {
		out[i] = estimate(e)
	}
	return out
}

func estimate(e models.VolatilityEstimate) Estimate {
	out := Estimate{
		Estimator:    e.Estimator,
		Period:       e.Period,
		Value:        vol(e.Value),
		Observations: e.Observations,
	}
	if !e.Start.IsZero() {
		out.Start = e.Start.Format(time.RFC3339)
	}
	if !e.End.IsZero() {
		out.End = e.End.Format(time.RFC3339)
	}
	return out
}

func money(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v).Round(pricePlaces)
}

func vol(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(volPlaces).InexactFloat64()
}
