package models

import "time"

// Bar is one OHLC observation.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries is a chronologically ordered run of bars for one symbol.
type PriceSeries struct {
	Symbol string
	Bars   []Bar
}

func (s PriceSeries) Len() int {
	return len(s.Bars)
}

func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Window returns bars [start, end) as a new series sharing the backing array.
func (s PriceSeries) Window(start, end int) PriceSeries {
	if start < 0 {
		start = 0
	}
	if end > len(s.Bars) {
		end = len(s.Bars)
	}
	if start > end {
		start = end
	}
	return PriceSeries{Symbol: s.Symbol, Bars: s.Bars[start:end:end]}
}

// Tail returns the last n bars.
func (s PriceSeries) Tail(n int) PriceSeries {
	return s.Window(len(s.Bars)-n, len(s.Bars))
}

// Span returns the first and last bar times, zero when empty.
func (s PriceSeries) Span() (time.Time, time.Time) {
	if len(s.Bars) == 0 {
		return time.Time{}, time.Time{}
	}
	return s.Bars[0].Time, s.Bars[len(s.Bars)-1].Time
}
