package chainclient

import (
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/rs/zerolog/log"

	"github.com/legacylock-io/sbtc-legacy-vault/internal/config"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/observability/metrics"
)

type ChainClient struct {
	client *rpcclient.Client
	cfg    *config.ChainConfig
}

func NewChainClient(cfg *config.ChainConfig) (*ChainClient, error) {
	c, err := rpcclient.New(cfg.ToConnConfig(), nil)
	if err != nil {
		return nil, err
	}

	return &ChainClient{
		client: c,
		cfg:    cfg,
	}, nil
}

func (c *ChainClient) TipHeight() (uint64, error) {
	start := time.Now()

	callForBlockCount := func() (int64, error) {
		return c.client.GetBlockCount()
	}

	blockCount, err := clientCallWithRetry(callForBlockCount, c.cfg)
	metrics.ObserveChainClientLatency("GetBlockCount", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to get block count: %w", err)
	}

	height := uint64(blockCount)
	metrics.RecordChainTipHeight(height)
	return height, nil
}

func clientCallWithRetry[T any](
	call retry.RetryableFuncWithData[T], cfg *config.ChainConfig,
) (T, error) {
	result, err := retry.DoWithData(
		call,
		retry.Attempts(cfg.MaxRetryTimes),
		retry.Delay(cfg.RetryInterval),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Debug().
				Uint("attempt", n+1).
				Err(err).
				Msg("failed to call the chain RPC client")
		}),
	)
	return result, err
}
