package config

import (
	"fmt"
	"time"

	"github.com/btcsuite/btcd/rpcclient"
)

const (
	// default rpc port of signet is 38332
	defaultChainRpcHost  = "127.0.0.1:38332"
	defaultChainRpcUser  = "user"
	defaultChainRpcPass  = "pass"
	defaultMaxRetryTimes = 5
	defaultRetryInterval = 500 * time.Millisecond
)

// ChainConfig defines the connection to the Bitcoin node that serves as the
// tick source. All deadline arithmetic runs against its tip height.
type ChainConfig struct {
	RPCHost       string        `mapstructure:"rpchost"`
	RPCUser       string        `mapstructure:"rpcuser"`
	RPCPass       string        `mapstructure:"rpcpass"`
	MaxRetryTimes uint          `mapstructure:"maxretrytimes"`
	RetryInterval time.Duration `mapstructure:"retryinterval"`
}

func DefaultChainConfig() *ChainConfig {
	return &ChainConfig{
		RPCHost:       defaultChainRpcHost,
		RPCUser:       defaultChainRpcUser,
		RPCPass:       defaultChainRpcPass,
		MaxRetryTimes: defaultMaxRetryTimes,
		RetryInterval: defaultRetryInterval,
	}
}

func (cfg *ChainConfig) ToConnConfig() *rpcclient.ConnConfig {
	return &rpcclient.ConnConfig{
		Host:                 cfg.RPCHost,
		User:                 cfg.RPCUser,
		Pass:                 cfg.RPCPass,
		DisableTLS:           true,
		DisableConnectOnNew:  true,
		DisableAutoReconnect: false,
		// post mode works with either bitcoind or btcwallet
		HTTPPostMode: true,
	}
}

func (cfg *ChainConfig) Validate() error {
	if cfg.RPCHost == "" {
		return fmt.Errorf("chain RPC host cannot be empty")
	}
	if cfg.RPCUser == "" {
		return fmt.Errorf("chain RPC user cannot be empty")
	}
	if cfg.RPCPass == "" {
		return fmt.Errorf("chain RPC password cannot be empty")
	}
	if cfg.MaxRetryTimes == 0 {
		return fmt.Errorf("chain max retry times must be positive")
	}
	if cfg.RetryInterval <= 0 {
		return fmt.Errorf("chain retry interval must be positive")
	}
	return nil
}
