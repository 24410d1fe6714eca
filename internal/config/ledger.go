package config

import (
	"fmt"
	"time"
)

// LedgerConfig defines the connection to the custody bridge performing
// atomic sBTC transfers between custody identities.
type LedgerConfig struct {
	Endpoint      string        `mapstructure:"endpoint"`
	FeeSink       string        `mapstructure:"fee-sink"` // custody id of the protocol fee sink
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxRetryTimes uint          `mapstructure:"maxretrytimes"`
	RetryInterval time.Duration `mapstructure:"retryinterval"`
}

func (cfg *LedgerConfig) Validate() error {
	if cfg.Endpoint == "" {
		return fmt.Errorf("ledger endpoint is required")
	}
	if cfg.FeeSink == "" {
		return fmt.Errorf("ledger fee sink custody id is required")
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("ledger timeout must be positive")
	}
	if cfg.MaxRetryTimes == 0 {
		return fmt.Errorf("ledger max retry times must be positive")
	}
	if cfg.RetryInterval <= 0 {
		return fmt.Errorf("ledger retry interval must be positive")
	}
	return nil
}
