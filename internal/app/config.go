package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	FlowPath   string // .hcl file or directory of .hcl files
	ListenAddr string // non-empty enables the HTTP API server

	LogFormat   string
	LogLevel    string
	MaxInFlight int
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.FlowPath == "" && cfg.ListenAddr == "" {
		return nil, errors.New("either FlowPath or ListenAddr must be set")
	}

	return &cfg, nil
}
