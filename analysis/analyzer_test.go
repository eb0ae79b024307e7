package analysis

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/bcdannyboy/optlab/config"
	"github.com/bcdannyboy/optlab/models"
	"github.com/bcdannyboy/optlab/pricing"
	"github.com/rs/zerolog"
)

const (
	spot    = 100.0
	rate    = 0.05
	trueVol = 0.25
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	cfg.Output.Quiet = true
	cfg.Pricing.Rate = rate
	cfg.Workers = 4
	return cfg
}

func testAnalyzer(t *testing.T) *Analyzer {
	return New(testConfig(t), zerolog.Nop())
}

func synthetic(n int) models.PriceSeries {
	epoch := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, n)
	price := 100.0
	for i := 0; i < n; i++ {
		move := 0.01 * math.Sin(float64(i)*1.7)
		open := price * (1 + 0.002*math.Cos(float64(i)))
		closePx := open * (1 + move)
		bars[i] = models.Bar{
			Time:  epoch.AddDate(0, 0, i),
			Open:  open,
			High:  math.Max(open, closePx) * 1.006,
			Low:   math.Min(open, closePx) * 0.994,
			Close: closePx,
		}
		price = closePx
	}
	return models.PriceSeries{Symbol: "SYN", Bars: bars}
}

// chain prices quotes at a flat volatility so the implied volatility of
// every quote is known.
func chain(t *testing.T, typ models.OptionType, expiry float64, strikes ...float64) []models.OptionQuote {
	t.Helper()
	quotes := make([]models.OptionQuote, len(strikes))
	for i, k := range strikes {
		q := models.OptionQuote{Strike: k, Expiry: expiry, Type: typ, Spot: spot, Rate: rate}
		p, err := pricing.Price(q, trueVol)
		if err != nil {
			t.Fatalf("Price() error = %v", err)
		}
		q.MarketPrice = p
		quotes[i] = q
	}
	return quotes
}

func strikes(from, to float64) []float64 {
	var out []float64
	for k := from; k <= to; k++ {
		out = append(out, k)
	}
	return out
}

func TestPriceQuotes(t *testing.T) {
	a := testAnalyzer(t)
	quotes := chain(t, models.Call, 0.5, 80, 90, 100, 110, 120)
	quotes = append(quotes, chain(t, models.Put, 1, 85, 95, 105)...)

	results, err := a.PriceQuotes(context.Background(), quotes, 0.2)
	if err != nil {
		t.Fatalf("PriceQuotes() error = %v", err)
	}
	if len(results) != len(quotes) {
		t.Fatalf("got %d results, want %d", len(results), len(quotes))
	}
	for i, r := range results {
		if r.Quote != quotes[i] {
			t.Errorf("result %d out of order: strike %v, want %v", i, r.Quote.Strike, quotes[i].Strike)
		}
		if r.Err != nil {
			t.Errorf("strike %v: Err = %v", r.Quote.Strike, r.Err)
			continue
		}
		if !r.Implied.Converged || math.Abs(r.Implied.Volatility-trueVol) > 1e-5 {
			t.Errorf("strike %v: implied = %+v, want %v", r.Quote.Strike, r.Implied, trueVol)
		}
		if r.Greeks.Vega <= 0 || r.Greeks.ImpliedVolatility != r.Implied.Volatility {
			t.Errorf("strike %v: greeks = %+v", r.Quote.Strike, r.Greeks)
		}
		want, _ := pricing.Price(r.Quote, 0.2)
		if math.Abs(r.ModelPrice-want) > 1e-12 {
			t.Errorf("strike %v: model price = %v, want %v", r.Quote.Strike, r.ModelPrice, want)
		}
		if math.Abs(r.Intrinsic+r.Extrinsic-r.Quote.MarketPrice) > 1e-9 {
			t.Errorf("strike %v: intrinsic %v + extrinsic %v != price %v", r.Quote.Strike, r.Intrinsic, r.Extrinsic, r.Quote.MarketPrice)
		}
	}
}

func TestPriceQuotes_RecordsFailures(t *testing.T) {
	a := testAnalyzer(t)
	quotes := chain(t, models.Call, 0.5, 100)
	arbitrage := models.OptionQuote{Strike: 80, Expiry: 0.5, Type: models.Call, Spot: spot, Rate: rate, MarketPrice: 1}
	quotes = append(quotes, arbitrage)

	results, err := a.PriceQuotes(context.Background(), quotes, 0)
	if err != nil {
		t.Fatalf("PriceQuotes() error = %v", err)
	}
	if results[0].Err != nil {
		t.Errorf("good quote failed: %v", results[0].Err)
	}
	if !errors.Is(results[1].Err, models.ErrNoConvergence) {
		t.Errorf("arbitrage quote Err = %v, want ErrNoConvergence", results[1].Err)
	}
	if results[1].Intrinsic != 20 {
		t.Errorf("arbitrage quote intrinsic = %v, want 20", results[1].Intrinsic)
	}
	if results[0].ModelPrice != 0 {
		t.Errorf("model price without reference vol = %v, want 0", results[0].ModelPrice)
	}
}

func TestPriceQuotes_Cancelled(t *testing.T) {
	a := testAnalyzer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.PriceQuotes(ctx, chain(t, models.Call, 0.5, 90, 100, 110), 0.2)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("PriceQuotes() error = %v, want context.Canceled", err)
	}
}

func TestPriceQuotes_Empty(t *testing.T) {
	results, err := testAnalyzer(t).PriceQuotes(context.Background(), nil, 0.2)
	if err != nil || results != nil {
		t.Errorf("PriceQuotes(nil) = %v, %v", results, err)
	}
}

func TestVolatility(t *testing.T) {
	a := testAnalyzer(t)
	series := synthetic(60)

	report, err := a.Volatility(series)
	if err != nil {
		t.Fatalf("Volatility() error = %v", err)
	}
	if len(report.Estimates) != 5 {
		t.Fatalf("got %d estimates, want 5", len(report.Estimates))
	}
	for _, est := range report.Estimates {
		if !(est.Value > 0) {
			t.Errorf("%s = %v, want positive", est.Estimator, est.Value)
		}
	}
	if want := 5 * (60 - 30 + 1); len(report.Rolling) != want {
		t.Errorf("got %d rolling estimates, want %d", len(report.Rolling), want)
	}
	if len(report.Trailing) != 0 {
		t.Errorf("trailing estimates produced while disabled: %d", len(report.Trailing))
	}
}

func TestVolatility_Trailing(t *testing.T) {
	cfg := testConfig(t)
	cfg.Volatility.Trailing = true
	cfg.Volatility.Estimators = []string{"historical"}
	report, err := New(cfg, zerolog.Nop()).Volatility(synthetic(70))
	if err != nil {
		t.Fatalf("Volatility() error = %v", err)
	}
	// 1w, 2w, 1m and 3m fit in 70 bars
	if len(report.Trailing) != 4 || report.Trailing[3].Period != "3m" {
		t.Errorf("trailing = %+v", report.Trailing)
	}
}

func TestVolatility_NothingEstimable(t *testing.T) {
	cfg := testConfig(t)
	cfg.Volatility.Estimators = []string{"historical", "yang_zhang"}
	_, err := New(cfg, zerolog.Nop()).Volatility(synthetic(1))
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Errorf("Volatility() error = %v, want ErrInsufficientData", err)
	}
}

func TestRun(t *testing.T) {
	a := testAnalyzer(t)
	tau := 30.0 / 365
	calls := chain(t, models.Call, tau, strikes(101, 130)...)
	puts := chain(t, models.Put, tau, strikes(70, 100)...)

	result, err := a.Run(context.Background(), synthetic(60), spot, calls, puts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Symbol != "SPY" || result.Spot != spot {
		t.Errorf("result header = %q %v", result.Symbol, result.Spot)
	}
	if result.Reference == nil || result.Reference.Estimator != models.Historical {
		t.Errorf("reference = %+v", result.Reference)
	}
	if result.Volatility == nil || len(result.Volatility.Estimates) == 0 {
		t.Errorf("volatility report missing")
	}
	if len(result.Quotes) != len(calls)+len(puts) {
		t.Errorf("got %d quote results", len(result.Quotes))
	}
	if result.Index == nil {
		t.Fatal("volatility index missing")
	}
	if result.Index.Value < 0.15 || result.Index.Value > 0.35 {
		t.Errorf("index = %v, want near %v", result.Index.Value, trueVol)
	}
	if result.Surface == nil {
		t.Fatal("surface missing")
	}
	if got := result.Surface.Interpolate(100, tau); math.Abs(got-trueVol) > 1e-4 {
		t.Errorf("surface at the money = %v, want %v", got, trueVol)
	}
}

func TestRun_QuotesOnly(t *testing.T) {
	a := testAnalyzer(t)
	result, err := a.Run(context.Background(), models.PriceSeries{}, spot, chain(t, models.Call, 0.5, 100), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Reference != nil || result.Volatility != nil || result.Index != nil {
		t.Errorf("unexpected history-derived output: %+v", result)
	}
	if len(result.Quotes) != 1 || result.Quotes[0].ModelPrice != 0 {
		t.Errorf("quotes = %+v", result.Quotes)
	}
}

func TestResolveSpot(t *testing.T) {
	cfg := testConfig(t)
	series := synthetic(5)

	got, err := ResolveSpot(cfg, series)
	if err != nil || got != series.Bars[4].Close {
		t.Errorf("ResolveSpot() = %v, %v, want last close", got, err)
	}

	cfg.Data.Spot = 123
	if got, _ := ResolveSpot(cfg, series); got != 123 {
		t.Errorf("ResolveSpot() = %v, want configured 123", got)
	}

	cfg.Data.Spot = 0
	if _, err := ResolveSpot(cfg, models.PriceSeries{}); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("ResolveSpot() error = %v, want ErrInvalidInput", err)
	}
}
