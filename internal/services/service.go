package services

import (
	"context"
	"slices"

	"github.com/legacylock-io/sbtc-legacy-vault/internal/clients/chainclient"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/clients/ledgerclient"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/config"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/db"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/db/model"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/queue"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/types"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/utils"
)

type Service struct {
	cfg        *config.Config
	db         db.DbInterface
	chain      chainclient.ChainInterface
	ledger     ledgerclient.LedgerInterface
	publisher  queue.PublisherInterface
	feeSink    types.CustodyID
	vaultLocks *utils.KeyedMutex
}

func NewService(
	cfg *config.Config,
	db db.DbInterface,
	chain chainclient.ChainInterface,
	ledger ledgerclient.LedgerInterface,
	publisher queue.PublisherInterface,
) *Service {
	return &Service{
		cfg:        cfg,
		db:         db,
		chain:      chain,
		ledger:     ledger,
		publisher:  publisher,
		feeSink:    types.CustodyID(cfg.Ledger.FeeSink),
		vaultLocks: utils.NewKeyedMutex(),
	}
}

// Init seeds the singleton admin state; idempotent across restarts.
func (s *Service) Init(ctx context.Context) error {
	return s.db.InitAdminState(ctx, s.cfg.Vault.AdminID, s.cfg.Vault.ProtocolFeeBps)
}

// Start launches the background status-mirror maintenance.
func (s *Service) Start(ctx context.Context) {
	s.StartExpiryChecker(ctx)
}

// tipHeight reads the current tick from the chain client.
func (s *Service) tipHeight() (uint64, *types.Error) {
	tip, err := s.chain.TipHeight()
	if err != nil {
		return 0, types.WrapError(types.InternalServiceError, err)
	}
	return tip, nil
}

// getVault loads a vault aggregate, mapping db errors onto the taxonomy.
func (s *Service) getVault(ctx context.Context, vaultID string) (*model.VaultDocument, *types.Error) {
	vault, err := s.db.GetVault(ctx, vaultID)
	if err != nil {
		if db.IsNotFoundError(err) {
			return nil, types.NewErrorf(types.NotFound, "vault %s not found", vaultID)
		}
		return nil, types.WrapError(types.InternalServiceError, err)
	}
	return vault, nil
}

// ensureNotPaused rejects mutating operations on an admin-paused vault.
func (s *Service) ensureNotPaused(ctx context.Context, vaultID string) *types.Error {
	state, err := s.db.GetAdminState(ctx)
	if err != nil {
		if db.IsNotFoundError(err) {
			// no admin state yet means nothing is paused
			return nil
		}
		return types.WrapError(types.InternalServiceError, err)
	}
	if slices.Contains(state.PausedVaults, vaultID) {
		return types.NewErrorf(types.Paused, "vault %s is paused", vaultID)
	}
	return nil
}

// adminState loads the singleton administrative record.
func (s *Service) adminState(ctx context.Context) (*model.AdminStateDocument, *types.Error) {
	state, err := s.db.GetAdminState(ctx)
	if err != nil {
		if db.IsNotFoundError(err) {
			return nil, types.NewError(types.InternalServiceError, "admin state not initialized")
		}
		return nil, types.WrapError(types.InternalServiceError, err)
	}
	return state, nil
}
