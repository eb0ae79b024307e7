package pricing

import (
	"fmt"
	"math"
	"sort"

	"github.com/bcdannyboy/optlab/models"
)

type SurfacePoint struct {
	Strike     float64
	Expiry     float64
	Volatility float64
}

// Surface is an implied volatility grid. Vols[i][j] belongs to Expiries[i]
// and Strikes[j].
type Surface struct {
	Expiries []float64
	Strikes  []float64
	Vols     [][]float64
}

// NewSurface grids the points by expiry and strike. Points sharing a cell are
// averaged; cells an expiry has no quote for take the vol of the nearest
// quoted strike of that expiry.
func NewSurface(points []SurfacePoint) (*Surface, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: surface needs at least one point", models.ErrInsufficientData)
	}

	type cell struct {
		sum   float64
		count int
	}
	rows := make(map[float64]map[float64]*cell)
	strikeSet := make(map[float64]struct{})

	for _, p := range points {
		if !(p.Strike > 0) || !(p.Expiry > 0) || !(p.Volatility > 0) || math.IsInf(p.Strike, 0) || math.IsInf(p.Expiry, 0) || math.IsInf(p.Volatility, 0) {
			return nil, fmt.Errorf("%w: surface point %+v", models.ErrInvalidInput, p)
		}
		row, ok := rows[p.Expiry]
		if !ok {
			row = make(map[float64]*cell)
			rows[p.Expiry] = row
		}
		c, ok := row[p.Strike]
		if !ok {
			c = &cell{}
			row[p.Strike] = c
		}
		c.sum += p.Volatility
		c.count++
		strikeSet[p.Strike] = struct{}{}
	}

	surface := &Surface{
		Expiries: sortedKeys(rows),
		Strikes:  make([]float64, 0, len(strikeSet)),
	}
	for k := range strikeSet {
		surface.Strikes = append(surface.Strikes, k)
	}
	sort.Float64s(surface.Strikes)

	surface.Vols = make([][]float64, len(surface.Expiries))
	for i, t := range surface.Expiries {
		row := rows[t]
		quoted := make([]float64, 0, len(row))
		for k := range row {
			quoted = append(quoted, k)
		}
		sort.Float64s(quoted)

		vols := make([]float64, len(surface.Strikes))
		for j, k := range surface.Strikes {
			c := row[nearest(quoted, k)]
			vols[j] = c.sum / float64(c.count)
		}
		surface.Vols[i] = vols
	}

	return surface, nil
}

// Interpolate returns the bilinear vol at strike and expiry, clamped to the
// edges of the grid.
func (s *Surface) Interpolate(strike, expiry float64) float64 {
	if s == nil || len(s.Expiries) == 0 || len(s.Strikes) == 0 {
		return 0
	}

	t0, t1, wt := locate(s.Expiries, expiry)
	k0, k1, wk := locate(s.Strikes, strike)

	v00 := s.Vols[t0][k0]
	v01 := s.Vols[t0][k1]
	v10 := s.Vols[t1][k0]
	v11 := s.Vols[t1][k1]

	return (1-wt)*(1-wk)*v00 + (1-wt)*wk*v01 + wt*(1-wk)*v10 + wt*wk*v11
}

// locate returns the neighbouring indices of x in sorted xs and the weight of
// the upper one.
func locate(xs []float64, x float64) (int, int, float64) {
	n := len(xs)
	if x <= xs[0] {
		return 0, 0, 0
	}
	if x >= xs[n-1] {
		return n - 1, n - 1, 0
	}
	hi := sort.SearchFloat64s(xs, x)
	lo := hi - 1
	return lo, hi, (x - xs[lo]) / (xs[hi] - xs[lo])
}

func nearest(sorted []float64, x float64) float64 {
	i := sort.SearchFloat64s(sorted, x)
	switch {
	case i == 0:
		return sorted[0]
	case i == len(sorted):
		return sorted[len(sorted)-1]
	case sorted[i]-x < x-sorted[i-1]:
		return sorted[i]
	default:
		return sorted[i-1]
	}
}

func sortedKeys[V any](m map[float64]V) []float64 {
	keys := make([]float64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Float64s(keys)
	return keys
}
