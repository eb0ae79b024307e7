package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bcdannyboy/optlab/config"
	"github.com/bcdannyboy/optlab/models"
	"github.com/rs/zerolog"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func history(n int) string {
	var b strings.Builder
	b.WriteString("Date,Open,High,Low,Close,Adj Close,Volume\n")
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	price := 100.0
	for i := 0; i < n; i++ {
		open := price
		closePx := open * (1 + 0.01*math.Sin(float64(i)))
		fmt.Fprintf(&b, "%s,%.4f,%.4f,%.4f,%.4f,%.4f,1000\n",
			day.AddDate(0, 0, i).Format("2006-01-02"),
			open, math.Max(open, closePx)*1.005, math.Min(open, closePx)*0.995, closePx, closePx)
		price = closePx
	}
	return b.String()
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Data.History = writeFile(t, dir, "spy.csv", history(40))
	cfg.Data.Calls = writeFile(t, dir, "chain.csv", "strike,lastPrice,expiry,type\n100,10.45,1,call\n100,5.57,1,put\n")
	cfg.Data.Spot = 100
	cfg.Pricing.Rate = 0.05
	cfg.Output.Report = filepath.Join(dir, "report.json")
	cfg.Output.Rolling = filepath.Join(dir, "rolling.csv")
	cfg.Output.Quiet = true

	if err := run(context.Background(), cfg, zerolog.Nop()); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	data, err := os.ReadFile(cfg.Output.Report)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"symbol": "SPY"`, `"type": "call"`, `"type": "put"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("report missing %s", want)
		}
	}
	if _, err := os.Stat(cfg.Output.Rolling); err != nil {
		t.Errorf("rolling csv not written: %v", err)
	}
}

func TestRun_NothingConfigured(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := run(context.Background(), cfg, zerolog.Nop()); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("run() error = %v, want ErrInvalidInput", err)
	}
}

func TestSplitByType(t *testing.T) {
	calls, puts := splitByType([]models.OptionQuote{{Type: models.Put}, {Type: models.Call}, {Type: models.Put}})
	if len(calls) != 1 || len(puts) != 2 {
		t.Errorf("split = %d calls, %d puts", len(calls), len(puts))
	}
}
