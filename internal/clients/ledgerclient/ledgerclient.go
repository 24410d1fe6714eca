package ledgerclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/legacylock-io/sbtc-legacy-vault/internal/config"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/observability/metrics"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/types"
)

// LedgerClient talks to the custody bridge over HTTP. The bridge applies
// each transfer atomically; the idempotency key makes retries safe.
type LedgerClient struct {
	httpClient *http.Client
	cfg        *config.LedgerConfig
}

func NewLedgerClient(cfg *config.LedgerConfig) *LedgerClient {
	return &LedgerClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
	}
}

// FeeSink returns the custody identity collecting protocol fees.
func (c *LedgerClient) FeeSink() types.CustodyID {
	return types.CustodyID(c.cfg.FeeSink)
}

type transferRequest struct {
	IdempotencyKey string `json:"idempotency_key"`
	From           string `json:"from"`
	To             string `json:"to"`
	Amount         uint64 `json:"amount"`
}

func (c *LedgerClient) Transfer(
	ctx context.Context, from, to types.CustodyID, amount uint64,
) error {
	start := time.Now()

	body, err := json.Marshal(transferRequest{
		IdempotencyKey: uuid.New().String(),
		From:           from.String(),
		To:             to.String(),
		Amount:         amount,
	})
	if err != nil {
		return err
	}

	doTransfer := func() (struct{}, error) {
		req, err := http.NewRequestWithContext(
			ctx, http.MethodPost, c.cfg.Endpoint+"/transfers", bytes.NewReader(body),
		)
		if err != nil {
			return struct{}{}, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return struct{}{}, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			err := fmt.Errorf("custody bridge returned %d: %s", resp.StatusCode, msg)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				// the bridge rejected the transfer, retrying won't help
				return struct{}{}, retry.Unrecoverable(err)
			}
			return struct{}{}, err
		}
		return struct{}{}, nil
	}

	_, err = retry.DoWithData(
		doTransfer,
		retry.Attempts(c.cfg.MaxRetryTimes),
		retry.Delay(c.cfg.RetryInterval),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Debug().
				Uint("attempt", n+1).
				Err(err).
				Msg("failed to call the custody bridge")
		}),
	)
	metrics.ObserveLedgerTransferLatency(time.Since(start), err)
	return err
}
