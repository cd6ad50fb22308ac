package main

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/automlhq/tabular/pkg/errors"
)

// Config holds the trainjob configuration.
type Config struct {
	Store StoreConfig `mapstructure:"store"`
	Blobs BlobsConfig `mapstructure:"blobs"`
	Train TrainConfig `mapstructure:"train"`
	Log   LogConfig   `mapstructure:"log"`
}

// StoreConfig configures the job metadata store.
type StoreConfig struct {
	DSN string `mapstructure:"dsn"`
}

// BlobsConfig configures dataset and artifact storage.
type BlobsConfig struct {
	Root string `mapstructure:"root"`
}

// TrainConfig configures job execution.
type TrainConfig struct {
	TimeBudgetSecs int `mapstructure:"time_budget_secs"`
	HistogramBins  int `mapstructure:"histogram_bins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// loadConfig reads configuration from ./config.yaml and the TABULAR_*
// environment.
func loadConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TABULAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("store.dsn", "trainjob.db")
	v.SetDefault("blobs.root", "artifacts")
	v.SetDefault("train.time_budget_secs", 300)
	v.SetDefault("train.histogram_bins", 20)
	v.SetDefault("log.level", "info")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "config: unmarshal")
	}
	return &cfg, nil
}
