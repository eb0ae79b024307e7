package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bcdannyboy/optlab/analysis"
	"github.com/bcdannyboy/optlab/config"
	"github.com/bcdannyboy/optlab/dataset"
	"github.com/bcdannyboy/optlab/logger"
	"github.com/bcdannyboy/optlab/models"
	"github.com/bcdannyboy/optlab/report"
	"github.com/rs/zerolog"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	if err := config.LoadDotenv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log, closer, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("run failed")
		closer.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	var series models.PriceSeries
	if cfg.Data.History != "" {
		s, err := dataset.OpenPriceSeries(cfg.Data.History, cfg.Data.Symbol, cfg.Data.HistoryFormat)
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		series = s
		start, end := series.Span()
		log.Info().
			Str("symbol", series.Symbol).
			Int("bars", series.Len()).
			Time("start", start).
			Time("end", end).
			Msg("loaded price history")
	}

	var calls, puts []models.OptionQuote
	spot := cfg.Data.Spot
	if cfg.Data.Calls != "" || cfg.Data.Puts != "" {
		var err error
		spot, err = analysis.ResolveSpot(cfg, series)
		if err != nil {
			return err
		}
		opts := dataset.QuoteOptions{
			Spot:          spot,
			Rate:          cfg.Pricing.Rate,
			DividendYield: cfg.Pricing.DividendYield,
			ValuationDate: cfg.Valuation(),
			DayCount:      cfg.Pricing.DayCount,
		}
		fromCalls, err := loadQuotes(cfg.Data.Calls, models.Call, opts)
		if err != nil {
			return err
		}
		fromPuts, err := loadQuotes(cfg.Data.Puts, models.Put, opts)
		if err != nil {
			return err
		}
		// chain files may carry a type column that mixes both sides
		calls, puts = splitByType(append(fromCalls, fromPuts...))
		log.Info().
			Float64("spot", spot).
			Float64("rate", cfg.Pricing.Rate).
			Int("calls", len(calls)).
			Int("puts", len(puts)).
			Msg("loaded option quotes")
	} else if series.Len() == 0 {
		return fmt.Errorf("%w: nothing to analyze, configure data.history or option files", models.ErrInvalidInput)
	}

	result, err := analysis.New(cfg, log).Run(ctx, series, spot, calls, puts)
	if err != nil {
		return err
	}

	if cfg.Output.Report != "" {
		if err := report.Save(cfg.Output.Report, report.Build(result, time.Now())); err != nil {
			return err
		}
		log.Info().Str("path", cfg.Output.Report).Msg("wrote report")
	}
	if cfg.Output.Rolling != "" && result.Volatility != nil {
		if err := report.SaveRolling(cfg.Output.Rolling, result.Volatility.Rolling); err != nil {
			return err
		}
		log.Info().Str("path", cfg.Output.Rolling).Int("rows", len(result.Volatility.Rolling)).Msg("wrote rolling volatility")
	}
	return nil
}

func loadQuotes(path string, typ models.OptionType, opts dataset.QuoteOptions) ([]models.OptionQuote, error) {
	if path == "" {
		return nil, nil
	}
	opts.Type = typ.String()
	return dataset.OpenOptionQuotes(path, opts)
}

func splitByType(quotes []models.OptionQuote) (calls, puts []models.OptionQuote) {
	for _, q := range quotes {
		if q.Type == models.Put {
			puts = append(puts, q)
		} else {
			calls = append(calls, q)
		}
	}
	return calls, puts
}
