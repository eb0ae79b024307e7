package pricing

import (
	"errors"
	"testing"

	"github.com/bcdannyboy/optlab/models"
)

func TestSurface_Interpolate(t *testing.T) {
	s, err := NewSurface([]SurfacePoint{
		{Strike: 90, Expiry: 0.25, Volatility: 0.30},
		{Strike: 110, Expiry: 0.25, Volatility: 0.20},
		{Strike: 90, Expiry: 0.5, Volatility: 0.28},
		{Strike: 110, Expiry: 0.5, Volatility: 0.22},
	})
	if err != nil {
		t.Fatalf("surface err: %v", err)
	}

	if got := s.Interpolate(90, 0.25); !almostEqual(got, 0.30, 1e-12) {
		t.Errorf("corner: got %v", got)
	}
	if got := s.Interpolate(100, 0.25); !almostEqual(got, 0.25, 1e-12) {
		t.Errorf("strike midpoint: got %v", got)
	}
	if got := s.Interpolate(100, 0.375); !almostEqual(got, 0.25, 1e-12) {
		t.Errorf("centre: got %v", got)
	}
	if got := s.Interpolate(50, 2); !almostEqual(got, 0.28, 1e-12) {
		t.Errorf("clamped: got %v", got)
	}
}

func TestSurface_FillsMissingStrikes(t *testing.T) {
	s, err := NewSurface([]SurfacePoint{
		{Strike: 90, Expiry: 0.25, Volatility: 0.30},
		{Strike: 100, Expiry: 0.25, Volatility: 0.25},
		{Strike: 100, Expiry: 0.25, Volatility: 0.27},
		{Strike: 120, Expiry: 0.5, Volatility: 0.21},
	})
	if err != nil {
		t.Fatalf("surface err: %v", err)
	}
	if len(s.Strikes) != 3 || len(s.Expiries) != 2 {
		t.Fatalf("unexpected grid %v x %v", s.Expiries, s.Strikes)
	}
	if got := s.Vols[0][1]; !almostEqual(got, 0.26, 1e-12) {
		t.Errorf("averaged cell: got %v", got)
	}
	if got := s.Vols[0][2]; !almostEqual(got, 0.26, 1e-12) {
		t.Errorf("filled cell: got %v", got)
	}
	if got := s.Vols[1][0]; !almostEqual(got, 0.21, 1e-12) {
		t.Errorf("filled cell: got %v", got)
	}
}

func TestSurface_Errors(t *testing.T) {
	if _, err := NewSurface(nil); !errors.Is(err, models.ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
	if _, err := NewSurface([]SurfacePoint{{Strike: 100, Expiry: 0.5, Volatility: 0}}); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
