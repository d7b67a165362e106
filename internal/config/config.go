package config

import (
	"time"
)

// Version defines the digico-report version.
var Version string

// Config defines the configuration structure.
type Config struct {
	General struct {
		LogLevel    int  `mapstructure:"log_level"`
		LogJSON     bool `mapstructure:"log_json"`
		LogToSyslog bool `mapstructure:"log_to_syslog"`
	} `mapstructure:"general"`

	Session struct {
		TempDir            string `mapstructure:"temp_dir"`
		MaxOpenConnections int    `mapstructure:"max_open_connections"`
		MaxUploadSize      int64  `mapstructure:"max_upload_size"`
	} `mapstructure:"session"`

	Aggregator struct {
		MinChannelID int64 `mapstructure:"min_channel_id"`
		MaxChannelID int64 `mapstructure:"max_channel_id"`
		SnapshotID   int64 `mapstructure:"snapshot_id"`
		Workers      int   `mapstructure:"workers"`
	} `mapstructure:"aggregator"`

	Graph struct {
		Width  int    `mapstructure:"width"`
		Height int    `mapstructure:"height"`
		Format string `mapstructure:"format"`
	} `mapstructure:"graph"`

	API struct {
		Bind         string        `mapstructure:"bind"`
		ReadTimeout  time.Duration `mapstructure:"read_timeout"`
		WriteTimeout time.Duration `mapstructure:"write_timeout"`
	} `mapstructure:"api"`

	Monitoring struct {
		Bind                string `mapstructure:"bind"`
		PrometheusEndpoint  bool   `mapstructure:"prometheus_endpoint"`
		HealthcheckEndpoint bool   `mapstructure:"healthcheck_endpoint"`
	} `mapstructure:"monitoring"`
}

// C holds the global configuration.
var C Config
