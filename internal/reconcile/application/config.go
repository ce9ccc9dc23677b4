package application

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	reconcile "entsoe-feeder/internal/reconcile/domain"
)

// Pair is a country pair whose cross-border flow is collected.
type Pair struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// String returns "FROM-TO".
func (p Pair) String() string { return p.From + "-" + p.To }

// Config defines what the feeder collects and how often.
type Config struct {
	Countries      []string `yaml:"countries"`
	Exchanges      []Pair   `yaml:"exchanges"`
	CollectEvery   string   `yaml:"collect_every"`
	Parallelism    int      `yaml:"parallelism"`
	SignConvention string   `yaml:"exchange_sign_convention"`
}

// LoadConfig loads config from yaml or env.
func LoadConfig() (Config, error) {
	cfg := Config{
		CollectEvery:   getenvDefault("FEEDER_COLLECT_EVERY", "15m"),
		Parallelism:    getenvIntDefault("FEEDER_PARALLELISM", 4),
		SignConvention: os.Getenv("EXCHANGE_SIGN_CONVENTION"),
	}

	if path := os.Getenv("FEEDER_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if len(cfg.Countries) == 0 {
		cfg.Countries = splitCSV(os.Getenv("FEEDER_COUNTRIES"))
	}
	if len(cfg.Exchanges) == 0 {
		pairs, err := parsePairs(os.Getenv("FEEDER_EXCHANGES"))
		if err != nil {
			return cfg, err
		}
		cfg.Exchanges = pairs
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 1
	}
	if _, err := cfg.Interval(); err != nil {
		return cfg, err
	}
	if _, err := cfg.Convention(); err != nil {
		return cfg, err
	}
	for _, pair := range cfg.Exchanges {
		if pair.From == "" || pair.To == "" || pair.From == pair.To {
			return cfg, fmt.Errorf("feeder: invalid exchange pair %q", pair.String())
		}
	}
	return cfg, nil
}

// Interval returns the parsed collection interval.
func (c Config) Interval() (time.Duration, error) {
	d, err := time.ParseDuration(c.CollectEvery)
	if err != nil {
		return 0, fmt.Errorf("feeder: invalid collect_every %q: %w", c.CollectEvery, err)
	}
	if d <= 0 {
		return 0, errors.New("feeder: collect_every must be positive")
	}
	return d, nil
}

// Convention returns the exchange sign convention.
func (c Config) Convention() (reconcile.SignConvention, error) {
	return reconcile.ParseSignConvention(c.SignConvention)
}

func parsePairs(value string) ([]Pair, error) {
	var pairs []Pair
	for _, item := range splitCSV(value) {
		parts := strings.Split(item, "-")
		if len(parts) != 2 {
			return nil, fmt.Errorf("feeder: invalid exchange pair %q", item)
		}
		pairs = append(pairs, Pair{From: strings.TrimSpace(parts[0]), To: strings.TrimSpace(parts[1])})
	}
	return pairs, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
