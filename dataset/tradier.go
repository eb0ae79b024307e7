package dataset

import (
	"fmt"
	"io"

	"github.com/bcdannyboy/optlab/models"
	"github.com/xhhuango/json"
)

// QuoteHistory mirrors a saved response of Tradier's /v1/markets/history.
type QuoteHistory struct {
	History struct {
		Day []struct {
			Date   string  `json:"date"`
			Open   float64 `json:"open"`
			High   float64 `json:"high"`
			Low    float64 `json:"low"`
			Close  float64 `json:"close"`
			Volume int     `json:"volume"`
		} `json:"day"`
	} `json:"history"`
}

// LoadTradierHistory decodes a saved Tradier daily history into a series.
func LoadTradierHistory(r io.Reader, symbol string) (models.PriceSeries, error) {
	responseData, err := io.ReadAll(r)
	if err != nil {
		return models.PriceSeries{}, fmt.Errorf("failed to read history data: %w", err)
	}

	quoteHistory := &QuoteHistory{}
	if err := json.Unmarshal(responseData, quoteHistory); err != nil {
		return models.PriceSeries{}, fmt.Errorf("%w: failed to unmarshal history data: %v", models.ErrInvalidInput, err)
	}

	bars := make([]models.Bar, 0, len(quoteHistory.History.Day))
	for i, day := range quoteHistory.History.Day {
		t, err := parseTime(day.Date)
		if err != nil {
			return models.PriceSeries{}, fmt.Errorf("day %d: %w", i, err)
		}
		bars = append(bars, models.Bar{
			Time:   t,
			Open:   day.Open,
			High:   day.High,
			Low:    day.Low,
			Close:  day.Close,
			Volume: float64(day.Volume),
		})
	}
	return newSeries(symbol, bars)
}
