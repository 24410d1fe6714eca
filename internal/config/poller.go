package config

import (
	"fmt"
	"time"
)

type PollerConfig struct {
	ExpiryCheckerPollingInterval time.Duration `mapstructure:"expiry-checker-polling-interval"`
	ExpiredVaultsLimit           uint64        `mapstructure:"expired-vaults-limit"`
}

func (cfg *PollerConfig) Validate() error {
	if cfg.ExpiryCheckerPollingInterval <= 0 {
		return fmt.Errorf("expiry checker polling interval must be positive")
	}
	if cfg.ExpiredVaultsLimit == 0 {
		return fmt.Errorf("expired vaults limit must be positive")
	}
	return nil
}
