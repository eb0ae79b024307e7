package volatility

import (
	"fmt"
	"math"

	"github.com/bcdannyboy/optlab/models"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

const minGARCHReturns = 10

// GARCH11 holds the parameters of σ²_t = ω + α·r²_{t-1} + β·σ²_{t-1}.
type GARCH11 struct {
	Omega float64
	Alpha float64
	Beta  float64
}

// Valid reports whether the parameters describe a stationary process.
func (g GARCH11) Valid() bool {
	return g.Omega > 0 && g.Alpha >= 0 && g.Beta >= 0 && g.Alpha+g.Beta < 1
}

// LogLikelihood is the Gaussian log-likelihood of demeaned returns, with the
// recursion seeded at their sample variance.
func (g GARCH11) LogLikelihood(returns []float64) float64 {
	variance := stat.Variance(returns, nil)
	logLik := 0.0
	for i := 1; i < len(returns); i++ {
		variance = g.Omega + g.Alpha*returns[i-1]*returns[i-1] + g.Beta*variance
		logLik += -0.5*math.Log(2*math.Pi) - 0.5*math.Log(variance) - 0.5*returns[i]*returns[i]/variance
	}
	return logLik
}

// NextVariance is the one-step-ahead conditional variance after returns.
func (g GARCH11) NextVariance(returns []float64) float64 {
	variance := stat.Variance(returns, nil)
	for i := 1; i <= len(returns); i++ {
		variance = g.Omega + g.Alpha*returns[i-1]*returns[i-1] + g.Beta*variance
	}
	return variance
}

// FitGARCH11 estimates parameters by maximum likelihood with Nelder-Mead.
// The search runs over an unconstrained reparameterization (log ω and
// logistic persistence and ARCH share) so every candidate is stationary.
// When the optimizer fails the starting point is returned.
func FitGARCH11(returns []float64) (GARCH11, error) {
	if len(returns) < minGARCHReturns {
		return GARCH11{}, fmt.Errorf("%w: GARCH needs at least %d returns, got %d", models.ErrInsufficientData, minGARCHReturns, len(returns))
	}
	sampleVar := stat.Variance(returns, nil)
	if !(sampleVar > 0) {
		return GARCH11{}, fmt.Errorf("%w: GARCH needs returns with positive variance", models.ErrInvalidInput)
	}

	initialGuess := GARCH11{Omega: sampleVar * 0.1, Alpha: 0.1, Beta: 0.8}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return -decodeGARCH(x).LogLikelihood(returns)
		},
	}

	result, err := optimize.Minimize(problem, encodeGARCH(initialGuess), nil, &optimize.NelderMead{})
	if err != nil || result == nil {
		return initialGuess, nil
	}
	params := decodeGARCH(result.X)
	if !params.Valid() || math.IsNaN(params.LogLikelihood(returns)) {
		return initialGuess, nil
	}
	return params, nil
}

// GARCH fits GARCH(1,1) to demeaned log returns and returns the annualized
// one-step-ahead conditional volatility.
func GARCH(series models.PriceSeries, annualization float64) (float64, error) {
	if err := checkAnnualization(annualization); err != nil {
		return 0, err
	}
	if err := checkLength(series, minGARCHReturns+1); err != nil {
		return 0, err
	}
	returns, err := LogReturns(series)
	if err != nil {
		return 0, err
	}
	mean := stat.Mean(returns, nil)
	for i := range returns {
		returns[i] -= mean
	}

	params, err := FitGARCH11(returns)
	if err != nil {
		return 0, err
	}
	return annualize(params.NextVariance(returns), annualization)
}

func encodeGARCH(g GARCH11) []float64 {
	persistence := g.Alpha + g.Beta
	return []float64{math.Log(g.Omega), logit(persistence), logit(g.Alpha / persistence)}
}

func decodeGARCH(x []float64) GARCH11 {
	persistence := logistic(x[1])
	share := logistic(x[2])
	return GARCH11{
		Omega: math.Exp(x[0]),
		Alpha: persistence * share,
		Beta:  persistence * (1 - share),
	}
}

func logistic(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func logit(p float64) float64 {
	return math.Log(p / (1 - p))
}
