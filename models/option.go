package models

import (
	"fmt"
	"math"
	"strings"
)

type OptionType int

const (
	Call OptionType = iota
	Put
)

func (t OptionType) String() string {
	switch t {
	case Call:
		return "call"
	case Put:
		return "put"
	default:
		return fmt.Sprintf("OptionType(%d)", int(t))
	}
}

// ParseOptionType accepts call, c, put and p in any case.
func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return Call, nil
	case "put", "p":
		return Put, nil
	default:
		return 0, fmt.Errorf("%w: unknown option type %q", ErrInvalidInput, s)
	}
}

func (t OptionType) MarshalText() ([]byte, error) {
	switch t {
	case Call, Put:
		return []byte(t.String()), nil
	default:
		return nil, fmt.Errorf("%w: unknown option type %d", ErrInvalidInput, int(t))
	}
}

func (t *OptionType) UnmarshalText(b []byte) error {
	parsed, err := ParseOptionType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// OptionQuote is a single European option observation. Expiry is the time
// to maturity in years.
type OptionQuote struct {
	Symbol        string
	Strike        float64
	Expiry        float64
	Type          OptionType
	MarketPrice   float64
	Bid           float64
	Ask           float64
	Spot          float64
	Rate          float64
	DividendYield float64
}

// Mid returns the bid/ask midpoint, or 0 when either side is missing.
func (q OptionQuote) Mid() float64 {
	if q.Bid <= 0 || q.Ask <= 0 {
		return 0
	}
	return (q.Bid + q.Ask) / 2
}

func (q OptionQuote) Validate() error {
	switch {
	case !finite(q.Spot) || q.Spot <= 0:
		return fmt.Errorf("%w: spot must be positive, got %v", ErrInvalidInput, q.Spot)
	case !finite(q.Strike) || q.Strike <= 0:
		return fmt.Errorf("%w: strike must be positive, got %v", ErrInvalidInput, q.Strike)
	case !finite(q.Expiry) || q.Expiry < 0:
		return fmt.Errorf("%w: expiry must be non-negative, got %v", ErrInvalidInput, q.Expiry)
	case !finite(q.Rate):
		return fmt.Errorf("%w: rate must be finite, got %v", ErrInvalidInput, q.Rate)
	case !finite(q.DividendYield) || q.DividendYield < 0:
		return fmt.Errorf("%w: dividend yield must be non-negative, got %v", ErrInvalidInput, q.DividendYield)
	}
	if q.Type != Call && q.Type != Put {
		return fmt.Errorf("%w: unknown option type %d", ErrInvalidInput, int(q.Type))
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
