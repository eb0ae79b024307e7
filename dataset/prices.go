package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/bcdannyboy/optlab/models"
)

var timeLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05-07:00",
	time.RFC3339,
	"01/02/2006",
}

var priceColumns = map[string]string{
	"date":      "date",
	"datetime":  "date",
	"time":      "date",
	"timestamp": "date",
	"open":      "open",
	"high":      "high",
	"low":       "low",
	"close":     "close",
	"volume":    "volume",
}

// LoadPriceSeries reads an OHLC CSV with a header row, such as a yfinance
// download. Only the date and close columns are required. Rows are sorted
// chronologically; repeated timestamps are rejected.
func LoadPriceSeries(r io.Reader, symbol string) (models.PriceSeries, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return models.PriceSeries{}, fmt.Errorf("%w: read header: %v", models.ErrInvalidInput, err)
	}
	cols := mapColumns(header, priceColumns)
	// yfinance multi-ticker exports label the index column "Price"
	if _, ok := cols["date"]; !ok && normalize(header[0]) == "price" {
		cols["date"] = 0
	}
	if _, ok := cols["date"]; !ok {
		return models.PriceSeries{}, fmt.Errorf("%w: price history has no date column", models.ErrInvalidInput)
	}
	if _, ok := cols["close"]; !ok {
		return models.PriceSeries{}, fmt.Errorf("%w: price history has no close column", models.ErrInvalidInput)
	}

	var bars []models.Bar
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.PriceSeries{}, fmt.Errorf("%w: line %d: %v", models.ErrInvalidInput, line, err)
		}
		row := newRow(record, cols)
		if row.blank() || isSubHeader(row.get("date")) {
			continue
		}

		bar, err := parseBar(row)
		if err != nil {
			return models.PriceSeries{}, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, bar)
	}
	return newSeries(symbol, bars)
}

func parseBar(row row) (models.Bar, error) {
	var bar models.Bar
	var err error
	if bar.Time, err = parseTime(row.get("date")); err != nil {
		return bar, err
	}
	if bar.Close, err = row.float("close", 0); err != nil {
		return bar, err
	}
	if bar.Open, err = row.float("open", 0); err != nil {
		return bar, err
	}
	if bar.High, err = row.float("high", 0); err != nil {
		return bar, err
	}
	if bar.Low, err = row.float("low", 0); err != nil {
		return bar, err
	}
	if bar.Volume, err = row.float("volume", 0); err != nil {
		return bar, err
	}
	if !(bar.Close > 0) {
		return bar, fmt.Errorf("%w: close must be positive, got %v", models.ErrInvalidInput, bar.Close)
	}
	return bar, nil
}

func newSeries(symbol string, bars []models.Bar) (models.PriceSeries, error) {
	if len(bars) == 0 {
		return models.PriceSeries{}, fmt.Errorf("%w: price history for %q is empty", models.ErrInsufficientData, symbol)
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	for i := 1; i < len(bars); i++ {
		if bars[i].Time.Equal(bars[i-1].Time) {
			return models.PriceSeries{}, fmt.Errorf("%w: duplicate bar at %s", models.ErrInvalidInput, bars[i].Time.Format(time.RFC3339))
		}
	}
	return models.PriceSeries{Symbol: symbol, Bars: bars}, nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized date %q", models.ErrInvalidInput, s)
}

func isSubHeader(date string) bool {
	switch normalize(date) {
	case "ticker", "date":
		return true
	}
	return false
}
