package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/legacylock-io/sbtc-legacy-vault/internal/config"
)

const (
	testAdminID   = "admin-principal"
	testFeeSink   = "protocol-fee-sink"
	testTipHeight = 1000

	testWarningWindow = 10
	testFeeBps        = 100
)

type testEnv struct {
	svc    *Service
	db     *fakeDB
	ledger *fakeLedger
	chain  *fakeChain
	pub    *fakePublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Vault: config.VaultConfig{
			AdminID:        testAdminID,
			WarningWindow:  testWarningWindow,
			ProtocolFeeBps: testFeeBps,
		},
		Ledger: config.LedgerConfig{
			Endpoint:      "http://localhost:9999",
			FeeSink:       testFeeSink,
			Timeout:       time.Second,
			MaxRetryTimes: 1,
			RetryInterval: time.Millisecond,
		},
		Poller: config.PollerConfig{
			ExpiryCheckerPollingInterval: time.Second,
			ExpiredVaultsLimit:           100,
		},
	}

	env := &testEnv{
		db:     newFakeDB(),
		ledger: newFakeLedger(),
		chain:  &fakeChain{height: testTipHeight},
		pub:    &fakePublisher{},
	}
	env.svc = NewService(cfg, env.db, env.chain, env.ledger, env.pub)
	require.NoError(t, env.svc.Init(t.Context()))
	return env
}

// createVault registers a standard vault: delay 100, grace 50, tier 2.
func (e *testEnv) createVault(t *testing.T, vaultID, owner string, initialAmount uint64, autoDistribute bool) {
	t.Helper()
	_, err := e.svc.CreateVault(t.Context(), CreateVaultParams{
		VaultID:          vaultID,
		Owner:            owner,
		Name:             "family vault",
		InheritanceDelay: 100,
		GracePeriod:      50,
		PrivacyTier:      2,
		InitialAmount:    initialAmount,
		AutoDistribute:   autoDistribute,
	})
	require.Nil(t, err)
}

// advancePastGraceEnd moves the chain tip beyond the vault's grace end so
// trigger becomes eligible.
func (e *testEnv) advancePastGraceEnd(t *testing.T, vaultID string) {
	t.Helper()
	pol, err := e.svc.GetProofOfLife(t.Context(), vaultID)
	require.Nil(t, err)
	e.chain.setHeight(pol.GraceEnd)
}
