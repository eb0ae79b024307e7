package volatility

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/bcdannyboy/optlab/models"
)

var epoch = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func closes(prices ...float64) models.PriceSeries {
	bars := make([]models.Bar, len(prices))
	for i, p := range prices {
		bars[i] = models.Bar{Time: epoch.AddDate(0, 0, i), Open: p, High: p, Low: p, Close: p}
	}
	return models.PriceSeries{Symbol: "TEST", Bars: bars}
}

// synthetic returns a deterministic OHLC series with alternating moves and
// intraday ranges wide enough for every estimator.
func synthetic(n int) models.PriceSeries {
	bars := make([]models.Bar, n)
	price := 100.0
	for i := 0; i < n; i++ {
		move := 0.01 * math.Sin(float64(i)*1.7)
		if i%7 == 0 {
			move *= 3
		}
		open := price * (1 + 0.002*math.Cos(float64(i)))
		closePx := open * (1 + move)
		high := math.Max(open, closePx) * 1.006
		low := math.Min(open, closePx) * 0.994
		bars[i] = models.Bar{Time: epoch.AddDate(0, 0, i), Open: open, High: high, Low: low, Close: closePx}
		price = closePx
	}
	return models.PriceSeries{Symbol: "SYN", Bars: bars}
}

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestHistorical_ConstantSeriesIsZero(t *testing.T) {
	vol, err := Historical(closes(100, 100, 100, 100, 100), 252)
	if err != nil {
		t.Fatalf("historical err: %v", err)
	}
	if vol != 0 {
		t.Errorf("expected 0, got %v", vol)
	}
}

func TestHistorical_TwoPeriods(t *testing.T) {
	vol, err := Historical(closes(100, 110), 252)
	if err != nil {
		t.Fatalf("historical err: %v", err)
	}
	want := math.Log(1.1) * math.Sqrt(252)
	if vol <= 0 || !almostEqual(vol, want, 1e-12) {
		t.Errorf("got %v want %v", vol, want)
	}
}

func TestHistorical_SampleStdDev(t *testing.T) {
	series := closes(100, 102, 99, 101, 104)
	vol, err := Historical(series, 252)
	if err != nil {
		t.Fatalf("historical err: %v", err)
	}

	r := []float64{math.Log(1.02), math.Log(99.0 / 102), math.Log(101.0 / 99), math.Log(104.0 / 101)}
	mean := (r[0] + r[1] + r[2] + r[3]) / 4
	ss := 0.0
	for _, x := range r {
		ss += (x - mean) * (x - mean)
	}
	want := math.Sqrt(ss/3) * math.Sqrt(252)
	if !almostEqual(vol, want, 1e-12) {
		t.Errorf("got %v want %v", vol, want)
	}
}

func TestHistorical_Errors(t *testing.T) {
	if _, err := Historical(closes(100), 252); !errors.Is(err, models.ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
	if _, err := Historical(closes(100, 0, 101), 252); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for zero close, got %v", err)
	}
	if _, err := Historical(closes(100, 101), 0); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for zero annualization, got %v", err)
	}
}

func TestGarmanKlass(t *testing.T) {
	series := models.PriceSeries{Bars: []models.Bar{
		{Open: 100, High: 103, Low: 99, Close: 102},
		{Open: 102, High: 104, Low: 100, Close: 101},
	}}
	vol, err := GarmanKlass(series, 252)
	if err != nil {
		t.Fatalf("garman-klass err: %v", err)
	}

	c := 2*math.Log(2) - 1
	v1 := 0.5*math.Pow(math.Log(103.0/99), 2) - c*math.Pow(math.Log(102.0/100), 2)
	v2 := 0.5*math.Pow(math.Log(104.0/100), 2) - c*math.Pow(math.Log(101.0/102), 2)
	want := math.Sqrt((v1+v2)/2) * math.Sqrt(252)
	if !almostEqual(vol, want, 1e-12) {
		t.Errorf("got %v want %v", vol, want)
	}
}

func TestGarmanKlass_InvertedRange(t *testing.T) {
	series := synthetic(10)
	series.Bars[4].High, series.Bars[4].Low = series.Bars[4].Low, series.Bars[4].High*1.01
	if _, err := GarmanKlass(series, 252); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for L > H, got %v", err)
	}
}

func TestGarmanKlass_NonPositivePrices(t *testing.T) {
	series := synthetic(5)
	series.Bars[2].Open = 0
	if _, err := GarmanKlass(series, 252); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for zero open, got %v", err)
	}
	if _, err := GarmanKlass(models.PriceSeries{}, 252); !errors.Is(err, models.ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData for empty series, got %v", err)
	}
}

func TestRangeEstimators(t *testing.T) {
	series := synthetic(60)
	for _, e := range []models.Estimator{models.GarmanKlass, models.Parkinson, models.RogersSatchell, models.YangZhang, models.Historical} {
		est, err := Estimate(series, e, 252)
		if err != nil {
			t.Fatalf("%s err: %v", e, err)
		}
		if !(est.Value > 0) || est.Value > 5 {
			t.Errorf("%s: implausible value %v", e, est.Value)
		}
		if est.Estimator != e || est.Observations != 60 || !est.Start.Equal(epoch) {
			t.Errorf("%s: unexpected tags %+v", e, est)
		}
	}
}

func TestParkinson(t *testing.T) {
	series := models.PriceSeries{Bars: []models.Bar{{Open: 100, High: 110, Low: 100, Close: 105}}}
	vol, err := Parkinson(series, 1)
	if err != nil {
		t.Fatalf("parkinson err: %v", err)
	}
	want := math.Log(1.1) / math.Sqrt(4*math.Ln2)
	if !almostEqual(vol, want, 1e-12) {
		t.Errorf("got %v want %v", vol, want)
	}
}

func TestYangZhang_NeedsThreeBars(t *testing.T) {
	if _, err := YangZhang(synthetic(2), 252); !errors.Is(err, models.ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestEstimate_Deterministic(t *testing.T) {
	series := synthetic(120)
	for _, e := range []models.Estimator{models.Historical, models.GarmanKlass, models.GARCH} {
		a, err := Estimate(series, e, 252)
		if err != nil {
			t.Fatalf("%s err: %v", e, err)
		}
		b, _ := Estimate(series, e, 252)
		if a.Value != b.Value {
			t.Errorf("%s not deterministic: %v vs %v", e, a.Value, b.Value)
		}
	}
}

func TestEstimate_RejectsQuoteEstimators(t *testing.T) {
	if _, err := Estimate(synthetic(10), models.Implied, 252); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
