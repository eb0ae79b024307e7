package pricing

import (
	"fmt"

	"github.com/bcdannyboy/optlab/models"
)

// ShadowGamma returns the up and down shadow gammas: the change in delta per
// unit of spot when spot moves by priceChange (relative) and volatility moves
// with it by volChange (relative).
func ShadowGamma(option models.OptionQuote, volatility, priceChange, volChange float64) (float64, float64, error) {
	if err := validate(option, volatility); err != nil {
		return 0, 0, err
	}
	if option.Expiry == 0 || volatility == 0 {
		return 0, 0, fmt.Errorf("%w: shadow gamma needs time to expiry", models.ErrInvalidInput)
	}
	if priceChange <= 0 || priceChange >= 1 || volChange < 0 || volChange >= 1 {
		return 0, 0, fmt.Errorf("%w: bump sizes must lie in (0, 1), got %v and %v", models.ErrInvalidInput, priceChange, volChange)
	}
	up, down := shadowGamma(option, volatility, priceChange, volChange)
	return up, down, nil
}

// SkewGamma returns the central-difference derivative of vega with respect
// to volatility (volga).
func SkewGamma(option models.OptionQuote, volatility, volStep float64) (float64, error) {
	if err := validate(option, volatility); err != nil {
		return 0, err
	}
	if option.Expiry == 0 {
		return 0, fmt.Errorf("%w: skew gamma needs time to expiry", models.ErrInvalidInput)
	}
	if volStep <= 0 || volStep >= volatility {
		return 0, fmt.Errorf("%w: vol step must lie in (0, %v), got %v", models.ErrInvalidInput, volatility, volStep)
	}
	return skewGamma(option, volatility, volStep), nil
}

func shadowGamma(option models.OptionQuote, sigma, priceChange, volChange float64) (float64, float64) {
	S := option.Spot
	originalDelta := calculateBSM(option, sigma).Delta

	up := option
	up.Spot = S * (1 + priceChange)
	upDelta := calculateBSM(up, sigma*(1+volChange)).Delta

	down := option
	down.Spot = S * (1 - priceChange)
	downDelta := calculateBSM(down, sigma*(1-volChange)).Delta

	shadowUpGamma := (upDelta - originalDelta) / (up.Spot - S)
	shadowDownGamma := (originalDelta - downDelta) / (S - down.Spot)
	return shadowUpGamma, shadowDownGamma
}

func skewGamma(option models.OptionQuote, sigma, volStep float64) float64 {
	vegaUp := vega(option, sigma+volStep)
	vegaDown := vega(option, sigma-volStep)
	return (vegaUp - vegaDown) / (2 * volStep)
}
