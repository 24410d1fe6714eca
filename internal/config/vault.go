package config

import "fmt"

const (
	// maxProtocolFeeBps is the hard ceiling on the protocol fee (10%).
	maxProtocolFeeBps = 1000

	// defaultWarningWindow is roughly one day of blocks.
	defaultWarningWindow = 144
)

// VaultConfig carries the protocol-level vault parameters.
type VaultConfig struct {
	AdminID        string `mapstructure:"admin-id"`
	WarningWindow  uint64 `mapstructure:"warning-window"`   // ticks before deadline
	ProtocolFeeBps uint32 `mapstructure:"protocol-fee-bps"` // initial fee, admin-adjustable at runtime
}

func DefaultVaultConfig() *VaultConfig {
	return &VaultConfig{
		WarningWindow:  defaultWarningWindow,
		ProtocolFeeBps: 100,
	}
}

func (cfg *VaultConfig) Validate() error {
	if cfg.AdminID == "" {
		return fmt.Errorf("vault admin id is required")
	}
	if cfg.WarningWindow == 0 {
		return fmt.Errorf("vault warning window must be positive")
	}
	if cfg.ProtocolFeeBps > maxProtocolFeeBps {
		return fmt.Errorf("vault protocol fee must not exceed %d bps", maxProtocolFeeBps)
	}
	return nil
}
