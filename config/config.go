package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const envPrefix = "STOCKINFO_"

type Config struct {
	Symbols    []string         `toml:"symbols"`
	Output     string           `toml:"output"`
	Comma      string           `toml:"comma"`
	Delay      string           `toml:"delay"` // pause between symbols, e.g. "1s"
	Database   string           `toml:"database"`
	Logging    LoggingConfig    `toml:"logging"`
	Yahoo      YahooConfig      `toml:"yahoo"`
	Normalizer NormalizerConfig `toml:"normalizer"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

type YahooConfig struct {
	BaseURL           string  `toml:"base_url"`
	PageURL           string  `toml:"page_url"`
	CookieURL         string  `toml:"cookie_url"`
	Timeout           string  `toml:"timeout"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	DividendRange     string  `toml:"dividend_range"`
	Browser           bool    `toml:"browser"`
}

type NormalizerConfig struct {
	ExchangeTimezone      string `toml:"exchange_timezone"`
	MaxFutureDays         int    `toml:"max_future_days"`
	UnknownDividendStatus bool   `toml:"unknown_dividend_status"`
}

var DefaultSymbols = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA",
	"META", "V", "JPM", "DIS", "NFLX",
}

func NewDefaultConfig() *Config {
	return &Config{
		Symbols: append([]string(nil), DefaultSymbols...),
		Output:  "stock_data.csv",
		Comma:   ",",
		Delay:   "1s",
		Logging: LoggingConfig{
			Level: "info",
		},
		Yahoo: YahooConfig{
			BaseURL:           "https://query2.finance.yahoo.com",
			PageURL:           "https://finance.yahoo.com",
			CookieURL:         "https://fc.yahoo.com",
			Timeout:           "20s",
			RequestsPerSecond: 4,
			DividendRange:     "5y",
		},
		Normalizer: NormalizerConfig{
			ExchangeTimezone: "America/New_York",
			MaxFutureDays:    180,
		},
	}
}

// Load reads path over the defaults. A missing file is not an error when
// path is empty.
func Load(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %v: %w", path, err)
	}
	err = toml.Unmarshal(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config %v: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv loads envFiles (missing files are skipped) and applies the
// STOCKINFO_* variables. Variables already set in the environment win over
// the files.
func (c *Config) ApplyEnv(envFiles ...string) error {
	for _, f := range envFiles {
		err := godotenv.Load(f)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %v: %w", f, err)
		}
	}

	if v, ok := lookupEnv("SYMBOLS"); ok {
		c.Symbols = SplitSymbols(v)
	}
	if v, ok := lookupEnv("OUTPUT"); ok {
		c.Output = v
	}
	if v, ok := lookupEnv("DELAY"); ok {
		c.Delay = v
	}
	if v, ok := lookupEnv("DATABASE"); ok {
		c.Database = v
	}
	if v, ok := lookupEnv("LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	if v, ok := lookupEnv("YAHOO_BROWSER"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%vYAHOO_BROWSER: %v", envPrefix, err)
		}
		c.Yahoo.Browser = b
	}
	return nil
}

func lookupEnv(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (c *Config) Validate() error {
	if len(c.Symbols) == 0 {
		return errors.New("no symbols")
	}
	if c.Output == "" {
		return errors.New("output: empty path")
	}
	if _, err := c.CommaRune(); err != nil {
		return err
	}
	if _, err := c.DelayDuration(); err != nil {
		return err
	}
	if _, err := c.Yahoo.TimeoutDuration(); err != nil {
		return err
	}
	if c.Yahoo.RequestsPerSecond < 0 {
		return errors.New("yahoo.requests_per_second: negative")
	}
	if _, err := c.Normalizer.Location(); err != nil {
		return err
	}
	if c.Normalizer.MaxFutureDays <= 0 {
		return errors.New("normalizer.max_future_days: must be positive")
	}
	return nil
}

func (c *Config) CommaRune() (rune, error) {
	r, size := utf8.DecodeRuneInString(c.Comma)
	if c.Comma == "" || size != len(c.Comma) ||
		r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("comma: invalid separator %q", c.Comma)
	}
	return r, nil
}

func (c *Config) DelayDuration() (time.Duration, error) {
	return parseDuration("delay", c.Delay)
}

func (c *YahooConfig) TimeoutDuration() (time.Duration, error) {
	return parseDuration("yahoo.timeout", c.Timeout)
}

func (c *NormalizerConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.ExchangeTimezone)
	if err != nil {
		return nil, fmt.Errorf("normalizer.exchange_timezone: %v", err)
	}
	return loc, nil
}

func parseDuration(name, v string) (time.Duration, error) {
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%v: %v", name, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%v: negative duration", name)
	}
	return d, nil
}

// SplitSymbols parses a comma or space separated symbol list.
func SplitSymbols(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	symbols := make([]string, 0, len(fields))
	for _, f := range fields {
		symbols = append(symbols, strings.ToUpper(f))
	}
	return symbols
}
