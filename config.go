package cuckoofilter

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries the builder parameters in a form that can be kept in a
// configuration file. LoadConfig starts from the defaults, so fields missing
// from the file keep them; NewFromConfig passes every field to the builder
// as is and does not replace zero values.
type Config struct {
	InitialCapacity          int     `yaml:"initial_capacity"`
	FalsePositiveProbability float64 `yaml:"false_positive_probability"`
	EntriesPerBucket         int     `yaml:"entries_per_bucket"`
	MaxKicks                 int     `yaml:"max_kicks"`
}

func DefaultConfig() Config {
	return Config{
		InitialCapacity:          defaultInitialCapacity,
		FalsePositiveProbability: defaultFalsePositive,
		EntriesPerBucket:         defaultEntriesPerBucket,
		MaxKicks:                 defaultMaxKicks,
	}
}

// LoadConfig reads a yaml file into a Config, starting from the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// NewFromConfig builds a filter from a Config.
func NewFromConfig(cfg Config) (*ScalableCuckooFilter, error) {
	return NewBuilder().
		InitialCapacity(cfg.InitialCapacity).
		FalsePositiveProbability(cfg.FalsePositiveProbability).
		EntriesPerBucket(cfg.EntriesPerBucket).
		MaxKicks(cfg.MaxKicks).
		Build()
}
