package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/bcdannyboy/optlab/models"
)

// QuoteOptions supplies values for columns an options file leaves out.
type QuoteOptions struct {
	// Type is used when the file has no type column. Empty means the
	// column is required.
	Type          string
	Spot          float64
	Rate          float64
	DividendYield float64
	// ValuationDate anchors expiration dates. Required only when expiries
	// are given as dates.
	ValuationDate time.Time
	// DayCount converts calendar days to years. Zero means 365.
	DayCount float64
}

var quoteColumns = map[string]string{
	"contractsymbol":  "symbol",
	"symbol":          "symbol",
	"strike":          "strike",
	"strikeprice":     "strike",
	"marketprice":     "price",
	"last":            "price",
	"lastprice":       "price",
	"price":           "price",
	"premium":         "price",
	"bid":             "bid",
	"ask":             "ask",
	"type":            "type",
	"optiontype":      "type",
	"putcall":         "type",
	"expiry":          "expiry",
	"tau":             "expiry",
	"timetomaturity":  "expiry",
	"maturity":        "expiry",
	"expiration":      "expiration",
	"expirationdate":  "expiration",
	"expirydate":      "expiration",
	"spot":            "spot",
	"underlyingprice": "spot",
	"rate":            "rate",
	"riskfreerate":    "rate",
	"dividendyield":   "dividend",
	"dividend":        "dividend",
}

// LoadOptionQuotes reads option quotes from a CSV file with a header row.
// A row without a market price is priced at its bid/ask mid; a row with
// neither is rejected.
func LoadOptionQuotes(r io.Reader, opts QuoteOptions) ([]models.OptionQuote, error) {
	if opts.DayCount == 0 {
		opts.DayCount = 365
	}
	if opts.DayCount < 0 {
		return nil, fmt.Errorf("%w: day count must be positive, got %v", models.ErrInvalidInput, opts.DayCount)
	}
	var defaultType models.OptionType
	if opts.Type != "" {
		t, err := models.ParseOptionType(opts.Type)
		if err != nil {
			return nil, err
		}
		defaultType = t
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", models.ErrInvalidInput, err)
	}
	cols := mapColumns(header, quoteColumns)
	if _, ok := cols["strike"]; !ok {
		return nil, fmt.Errorf("%w: options file has no strike column", models.ErrInvalidInput)
	}
	_, hasExpiry := cols["expiry"]
	_, hasExpiration := cols["expiration"]
	if !hasExpiry && !hasExpiration {
		return nil, fmt.Errorf("%w: options file has no expiry column", models.ErrInvalidInput)
	}
	if _, ok := cols["type"]; !ok && opts.Type == "" {
		return nil, fmt.Errorf("%w: options file has no type column and no default type", models.ErrInvalidInput)
	}

	var quotes []models.OptionQuote
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", models.ErrInvalidInput, line, err)
		}
		row := newRow(record, cols)
		if row.blank() {
			continue
		}

		quote, err := parseQuote(row, opts, defaultType)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		quotes = append(quotes, quote)
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("%w: options file has no quotes", models.ErrInsufficientData)
	}
	return quotes, nil
}

func parseQuote(row row, opts QuoteOptions, defaultType models.OptionType) (models.OptionQuote, error) {
	quote := models.OptionQuote{Symbol: row.get("symbol"), Type: defaultType}
	var err error

	if row.has("type") {
		if quote.Type, err = models.ParseOptionType(row.get("type")); err != nil {
			return quote, err
		}
	}
	if quote.Strike, err = row.float("strike", 0); err != nil {
		return quote, err
	}
	if quote.Expiry, err = parseExpiry(row, opts); err != nil {
		return quote, err
	}
	if quote.Bid, err = row.float("bid", 0); err != nil {
		return quote, err
	}
	if quote.Ask, err = row.float("ask", 0); err != nil {
		return quote, err
	}
	if quote.MarketPrice, err = row.float("price", 0); err != nil {
		return quote, err
	}
	if quote.Spot, err = row.float("spot", opts.Spot); err != nil {
		return quote, err
	}
	if quote.Rate, err = row.float("rate", opts.Rate); err != nil {
		return quote, err
	}
	if quote.DividendYield, err = row.float("dividend", opts.DividendYield); err != nil {
		return quote, err
	}

	if quote.MarketPrice <= 0 {
		quote.MarketPrice = quote.Mid()
	}
	if quote.MarketPrice <= 0 {
		return quote, fmt.Errorf("%w: quote at strike %v has no price", models.ErrInvalidInput, quote.Strike)
	}
	return quote, quote.Validate()
}

// parseExpiry reads a year fraction from the expiry column or, failing
// that, converts a date from either expiry column against the valuation date.
func parseExpiry(row row, opts QuoteOptions) (float64, error) {
	if v := row.get("expiry"); v != "" {
		if years, err := strconv.ParseFloat(v, 64); err == nil {
			return years, nil
		}
	}
	date := row.get("expiration")
	if date == "" {
		date = row.get("expiry")
	}
	if date == "" {
		return 0, fmt.Errorf("%w: missing expiry", models.ErrInvalidInput)
	}
	expiration, err := parseTime(date)
	if err != nil {
		return 0, err
	}
	if opts.ValuationDate.IsZero() {
		return 0, fmt.Errorf("%w: expiration %s needs a valuation date", models.ErrInvalidInput, date)
	}
	days := expiration.Sub(opts.ValuationDate).Hours() / 24
	if days < 0 {
		return 0, fmt.Errorf("%w: expiration %s is before the valuation date", models.ErrInvalidInput, date)
	}
	return days / opts.DayCount, nil
}
