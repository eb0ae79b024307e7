package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bcdannyboy/optlab/models"
)

// History file formats accepted by OpenPriceSeries.
const (
	FormatCSV     = "csv"
	FormatTradier = "tradier"
)

func OpenOptionQuotes(path string, opts QuoteOptions) ([]models.OptionQuote, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open options file: %w", err)
	}
	defer f.Close()

	quotes, err := LoadOptionQuotes(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return quotes, nil
}

// OpenPriceSeries loads a price history file. An empty format is inferred
// from the extension: .json is a Tradier history, anything else is CSV.
func OpenPriceSeries(path, symbol, format string) (models.PriceSeries, error) {
	if format == "" {
		format = FormatCSV
		if strings.EqualFold(filepath.Ext(path), ".json") {
			format = FormatTradier
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return models.PriceSeries{}, fmt.Errorf("open history file: %w", err)
	}
	defer f.Close()

	var series models.PriceSeries
	switch format {
	case FormatCSV:
		series, err = LoadPriceSeries(f, symbol)
	case FormatTradier:
		series, err = LoadTradierHistory(f, symbol)
	default:
		return models.PriceSeries{}, fmt.Errorf("%w: unknown history format %q", models.ErrInvalidInput, format)
	}
	if err != nil {
		return models.PriceSeries{}, fmt.Errorf("%s: %w", path, err)
	}
	return series, nil
}
