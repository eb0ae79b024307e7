// Package pricing values European options under Black-Scholes-Merton with a
// continuous dividend yield and inverts the model for implied volatility.
package pricing

import (
	"fmt"
	"math"

	"github.com/bcdannyboy/optlab/models"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	shadowPriceChange = 0.01
	shadowVolChange   = 0.05
	skewVolStep       = 0.001
)

// Price returns the model value of option at the given annualized volatility.
// At expiry the intrinsic value is returned.
func Price(option models.OptionQuote, volatility float64) (float64, error) {
	if err := validate(option, volatility); err != nil {
		return 0, err
	}
	if option.Expiry == 0 {
		return Intrinsic(option), nil
	}
	return price(option, volatility), nil
}

// Calculate returns the price and Greeks of option. Theta is per year, vega
// per unit of volatility and rho per unit of rate.
func Calculate(option models.OptionQuote, volatility float64) (models.BSMResult, error) {
	if err := validate(option, volatility); err != nil {
		return models.BSMResult{}, err
	}
	if option.Expiry == 0 {
		return expiryResult(option), nil
	}

	result := calculateBSM(option, volatility)
	result.ShadowUpGamma, result.ShadowDownGamma = shadowGamma(option, volatility, shadowPriceChange, shadowVolChange)
	result.SkewGamma = skewGamma(option, volatility, volatility*skewVolStep)
	return result, nil
}

// Intrinsic is the exercise value of option at the current spot.
func Intrinsic(option models.OptionQuote) float64 {
	if option.Type == models.Call {
		return math.Max(0, option.Spot-option.Strike)
	}
	return math.Max(0, option.Strike-option.Spot)
}

func validate(option models.OptionQuote, volatility float64) error {
	if err := option.Validate(); err != nil {
		return err
	}
	if math.IsNaN(volatility) || math.IsInf(volatility, 0) || volatility < 0 {
		return fmt.Errorf("%w: volatility must be a non-negative number, got %v", models.ErrInvalidInput, volatility)
	}
	if option.Expiry > 0 && volatility == 0 {
		return fmt.Errorf("%w: volatility must be positive before expiry", models.ErrInvalidInput)
	}
	return nil
}

func d1d2(option models.OptionQuote, sigma float64) (float64, float64) {
	S, K, T, r, q := option.Spot, option.Strike, option.Expiry, option.Rate, option.DividendYield
	sqrtT := math.Sqrt(T)
	d1 := (math.Log(S/K) + (r-q+0.5*sigma*sigma)*T) / (sigma * sqrtT)
	return d1, d1 - sigma*sqrtT
}

func price(option models.OptionQuote, sigma float64) float64 {
	S, K, T, r, q := option.Spot, option.Strike, option.Expiry, option.Rate, option.DividendYield
	d1, d2 := d1d2(option, sigma)

	if option.Type == models.Call {
		return S*math.Exp(-q*T)*normCDF(d1) - K*math.Exp(-r*T)*normCDF(d2)
	}
	return K*math.Exp(-r*T)*normCDF(-d2) - S*math.Exp(-q*T)*normCDF(-d1)
}

func vega(option models.OptionQuote, sigma float64) float64 {
	d1, _ := d1d2(option, sigma)
	return option.Spot * math.Exp(-option.DividendYield*option.Expiry) * normPDF(d1) * math.Sqrt(option.Expiry)
}

func calculateBSM(option models.OptionQuote, sigma float64) models.BSMResult {
	S, K, T, r, q := option.Spot, option.Strike, option.Expiry, option.Rate, option.DividendYield
	d1, d2 := d1d2(option, sigma)
	sqrtT := math.Sqrt(T)
	discS := S * math.Exp(-q*T)
	discK := K * math.Exp(-r*T)

	var price, delta, theta, rho float64
	decay := -(discS * normPDF(d1) * sigma) / (2 * sqrtT)
	if option.Type == models.Call {
		price = discS*normCDF(d1) - discK*normCDF(d2)
		delta = math.Exp(-q*T) * normCDF(d1)
		theta = decay - r*discK*normCDF(d2) + q*discS*normCDF(d1)
		rho = K * T * math.Exp(-r*T) * normCDF(d2)
	} else {
		price = discK*normCDF(-d2) - discS*normCDF(-d1)
		delta = -math.Exp(-q*T) * normCDF(-d1)
		theta = decay + r*discK*normCDF(-d2) - q*discS*normCDF(-d1)
		rho = -K * T * math.Exp(-r*T) * normCDF(-d2)
	}

	return models.BSMResult{
		Price: price,
		Delta: delta,
		Gamma: math.Exp(-q*T) * normPDF(d1) / (S * sigma * sqrtT),
		Theta: theta,
		Vega:  discS * normPDF(d1) * sqrtT,
		Rho:   rho,
	}
}

// expiryResult holds the limits of the Greeks as time to maturity reaches zero.
func expiryResult(option models.OptionQuote) models.BSMResult {
	result := models.BSMResult{Price: Intrinsic(option)}
	switch option.Type {
	case models.Call:
		if option.Spot > option.Strike {
			result.Delta = 1
		}
	case models.Put:
		if option.Spot < option.Strike {
			result.Delta = -1
		}
	}
	return result
}

func normCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

func normPDF(x float64) float64 {
	return distuv.UnitNormal.Prob(x)
}
