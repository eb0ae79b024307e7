package pricing

import (
	"fmt"
	"math"

	"github.com/bcdannyboy/optlab/models"
)

const (
	maxIterations = 100
	epsilon       = 1e-8

	minVolatility = 1e-6
	maxVolatility = 5.0
	initialGuess  = 0.5
	minVega       = 1e-12
)

// Solver inverts Price over volatility in [Lower, Upper]. Newton steps are
// taken on vega and replaced by bisection whenever they would leave the
// current bracket.
type Solver struct {
	Lower         float64
	Upper         float64
	Tolerance     float64
	MaxIterations int
}

type IVResult struct {
	Volatility float64
	Iterations int
	Converged  bool
}

func DefaultSolver() Solver {
	return Solver{
		Lower:         minVolatility,
		Upper:         maxVolatility,
		Tolerance:     epsilon,
		MaxIterations: maxIterations,
	}
}

// ImpliedVolatility solves Price(option, σ) = marketPrice with DefaultSolver.
func ImpliedVolatility(option models.OptionQuote, marketPrice float64) (float64, error) {
	res, err := DefaultSolver().Solve(option, marketPrice)
	if err != nil {
		return 0, err
	}
	return res.Volatility, nil
}

func (s Solver) Solve(option models.OptionQuote, marketPrice float64) (IVResult, error) {
	if err := option.Validate(); err != nil {
		return IVResult{}, err
	}
	if option.Expiry == 0 {
		return IVResult{}, fmt.Errorf("%w: implied volatility needs time to expiry", models.ErrInvalidInput)
	}
	if math.IsNaN(marketPrice) || math.IsInf(marketPrice, 0) || marketPrice <= 0 {
		return IVResult{}, fmt.Errorf("%w: market price must be positive, got %v", models.ErrInvalidInput, marketPrice)
	}
	if s.Lower <= 0 || s.Upper <= s.Lower || s.Tolerance <= 0 || s.MaxIterations <= 0 {
		return IVResult{}, fmt.Errorf("%w: solver bracket [%v, %v], tolerance %v, iterations %d", models.ErrInvalidInput, s.Lower, s.Upper, s.Tolerance, s.MaxIterations)
	}

	lowerBound, upperBound := NoArbitrageBounds(option)
	if marketPrice < lowerBound || marketPrice > upperBound {
		return IVResult{}, fmt.Errorf("%w: price %v outside no-arbitrage bounds [%v, %v]", models.ErrNoConvergence, marketPrice, lowerBound, upperBound)
	}

	lo, hi := s.Lower, s.Upper
	diffLo := price(option, lo) - marketPrice
	if math.Abs(diffLo) < s.Tolerance {
		return IVResult{Volatility: lo, Converged: true}, nil
	}
	diffHi := price(option, hi) - marketPrice
	if math.Abs(diffHi) < s.Tolerance {
		return IVResult{Volatility: hi, Converged: true}, nil
	}
	if diffLo > 0 || diffHi < 0 {
		return IVResult{}, fmt.Errorf("%w: price %v not bracketed by volatility [%v, %v]", models.ErrNoConvergence, marketPrice, lo, hi)
	}

	sigma := initialGuess
	if sigma <= lo || sigma >= hi {
		sigma = 0.5 * (lo + hi)
	}

	for i := 1; i <= s.MaxIterations; i++ {
		diff := price(option, sigma) - marketPrice
		if math.Abs(diff) < s.Tolerance {
			return IVResult{Volatility: sigma, Iterations: i, Converged: true}, nil
		}

		// price is increasing in sigma, so the sign of diff moves one edge
		if diff > 0 {
			hi = sigma
		} else {
			lo = sigma
		}

		next := sigma
		if v := vega(option, sigma); v > minVega {
			next = sigma - diff/v
		}
		if !(next > lo && next < hi) {
			next = 0.5 * (lo + hi)
		}
		sigma = next
	}

	return IVResult{Volatility: sigma, Iterations: s.MaxIterations},
		fmt.Errorf("%w: implied volatility did not converge after %d iterations", models.ErrNoConvergence, s.MaxIterations)
}

// NoArbitrageBounds returns the model-free price range of a European option.
func NoArbitrageBounds(option models.OptionQuote) (float64, float64) {
	discS := option.Spot * math.Exp(-option.DividendYield*option.Expiry)
	discK := option.Strike * math.Exp(-option.Rate*option.Expiry)
	if option.Type == models.Call {
		return math.Max(discS-discK, 0), discS
	}
	return math.Max(discK-discS, 0), discK
}
