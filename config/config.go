package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/bcdannyboy/optlab/models"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// Config holds all runner configuration.
type Config struct {
	Data       DataConfig       `yaml:"data"`
	Pricing    PricingConfig    `yaml:"pricing"`
	Volatility VolatilityConfig `yaml:"volatility"`
	Output     OutputConfig     `yaml:"output"`
	Log        LogConfig        `yaml:"log"`
	// Workers caps concurrent quote pricing. Zero means one per CPU.
	Workers int `yaml:"workers" validate:"gte=0"`
}

type DataConfig struct {
	Symbol        string `yaml:"symbol" default:"SPY" validate:"required"`
	Calls         string `yaml:"calls"`
	Puts          string `yaml:"puts"`
	History       string `yaml:"history"`
	HistoryFormat string `yaml:"history_format" validate:"omitempty,oneof=csv tradier"`
	// Spot defaults to the last close of the history when zero.
	Spot          float64 `yaml:"spot" validate:"gte=0"`
	ValuationDate string  `yaml:"valuation_date" validate:"omitempty,datetime=2006-01-02"`
}

type PricingConfig struct {
	Rate          float64 `yaml:"rate"`
	DividendYield float64 `yaml:"dividend_yield" validate:"gte=0"`
	DayCount      float64 `yaml:"day_count" default:"365" validate:"gt=0"`
	IVLower       float64 `yaml:"iv_lower" default:"0.000001" validate:"gt=0"`
	IVUpper       float64 `yaml:"iv_upper" default:"5" validate:"gtfield=IVLower"`
	Tolerance     float64 `yaml:"tolerance" default:"0.00000001" validate:"gt=0"`
	MaxIterations int     `yaml:"max_iterations" default:"100" validate:"gt=0"`
	// IndexDays is the horizon of the volatility index in calendar days.
	IndexDays float64 `yaml:"index_days" default:"30" validate:"gt=0"`
}

type VolatilityConfig struct {
	Annualization float64  `yaml:"annualization" default:"252" validate:"gt=0"`
	Window        int      `yaml:"window" default:"30" validate:"gte=2"`
	Reference     string   `yaml:"reference" default:"historical" validate:"oneof=historical garman_klass parkinson rogers_satchell yang_zhang garch realized"`
	Estimators    []string `yaml:"estimators" default:"[\"historical\",\"garman_klass\",\"parkinson\",\"rogers_satchell\",\"yang_zhang\"]" validate:"min=1,dive,oneof=historical garman_klass parkinson rogers_satchell yang_zhang garch realized"`
	Trailing      bool     `yaml:"trailing"`
}

type OutputConfig struct {
	Report  string `yaml:"report" default:"report.json"`
	Rolling string `yaml:"rolling"`
	Quiet   bool   `yaml:"quiet"`
}

type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" default:"console" validate:"oneof=json console"`
	Output string `yaml:"output" default:"stderr" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// LoadDotenv loads .env files into the process environment. Missing files
// are skipped; variables already set win.
func LoadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads config from a YAML file, applies OPTLAB_* environment
// overrides, fills defaults and validates. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"OPTLAB_SYMBOL":         &c.Data.Symbol,
		"OPTLAB_CALLS":          &c.Data.Calls,
		"OPTLAB_PUTS":           &c.Data.Puts,
		"OPTLAB_HISTORY":        &c.Data.History,
		"OPTLAB_HISTORY_FORMAT": &c.Data.HistoryFormat,
		"OPTLAB_VALUATION_DATE": &c.Data.ValuationDate,
		"OPTLAB_REPORT":         &c.Output.Report,
		"OPTLAB_ROLLING":        &c.Output.Rolling,
		"OPTLAB_LOG_LEVEL":      &c.Log.Level,
		"OPTLAB_LOG_FORMAT":     &c.Log.Format,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	floats := map[string]*float64{
		"OPTLAB_SPOT":           &c.Data.Spot,
		"OPTLAB_RATE":           &c.Pricing.Rate,
		"OPTLAB_DIVIDEND_YIELD": &c.Pricing.DividendYield,
		"OPTLAB_ANNUALIZATION":  &c.Volatility.Annualization,
	}
	for key, dst := range floats {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %q is not a number", key, v)
		}
		*dst = f
	}

	if v := os.Getenv("OPTLAB_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("OPTLAB_WORKERS: %q is not an integer", v)
		}
		c.Workers = n
	}
	if v := os.Getenv("OPTLAB_ESTIMATORS"); v != "" {
		names := strings.Split(v, ",")
		for i := range names {
			names[i] = strings.TrimSpace(names[i])
		}
		c.Volatility.Estimators = names
	}
	return nil
}

// Validate checks field constraints and reports the first few violations
// by their YAML path.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt", "gtfield":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date like %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

// Valuation returns the configured valuation date, or the zero time.
func (c *Config) Valuation() time.Time {
	if c.Data.ValuationDate == "" {
		return time.Time{}
	}
	t, _ := time.Parse(dateLayout, c.Data.ValuationDate)
	return t
}

// Estimators returns the configured estimator list in order.
func (c *Config) Estimators() []models.Estimator {
	out := make([]models.Estimator, 0, len(c.Volatility.Estimators))
	for _, name := range c.Volatility.Estimators {
		e, err := models.ParseEstimator(name)
		if err == nil {
			out = append(out, e)
		}
	}
	return out
}

// IndexTau is the volatility index horizon in years.
func (c *Config) IndexTau() float64 {
	return c.Pricing.IndexDays / c.Pricing.DayCount
}
