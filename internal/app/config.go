package app

import "errors"

// Config holds all the necessary configuration for an App instance to
// run.
type Config struct {
	// ProgramPath points at a single .hcl file or a directory of them.
	ProgramPath string

	// CheckpointDB is the path of the durable sqlite checkpoint store.
	// Empty selects the in-memory store.
	CheckpointDB string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ProgramPath == "" {
		return nil, errors.New("ProgramPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
