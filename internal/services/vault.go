package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/legacylock-io/sbtc-legacy-vault/internal/db"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/db/model"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/observability/metrics"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/types"
)

const (
	minPrivacyTier = 1
	maxPrivacyTier = 4
)

type CreateVaultParams struct {
	VaultID          string
	Owner            string
	Name             string
	InheritanceDelay uint64 // ticks
	GracePeriod      uint64 // ticks
	PrivacyTier      uint8
	InitialAmount    uint64
	Locked           bool
	AutoDistribute   bool
	MinInheritance   uint64
}

// CreateVault registers a new vault aggregate for the owner, initializing
// its proof-of-life at the current tick. A non-zero initial amount is moved
// into vault custody before the record is committed; if either side fails
// the other is compensated so no partial state survives.
func (s *Service) CreateVault(ctx context.Context, params CreateVaultParams) (vault *model.VaultDocument, resultErr *types.Error) {
	defer func() { metrics.RecordOperation("create_vault", resultErr) }()

	if params.PrivacyTier < minPrivacyTier || params.PrivacyTier > maxPrivacyTier {
		return nil, types.NewErrorf(types.InvalidPrivacyTier,
			"privacy tier %d outside %d-%d", params.PrivacyTier, minPrivacyTier, maxPrivacyTier)
	}
	if params.InheritanceDelay == 0 {
		return nil, types.NewError(types.InvalidDelay, "inheritance delay must be positive")
	}
	if params.GracePeriod == 0 {
		return nil, types.NewError(types.InvalidGracePeriod, "grace period must be positive")
	}

	unlock := s.vaultLocks.Lock(params.VaultID)
	defer unlock()

	if _, err := s.db.GetVault(ctx, params.VaultID); err == nil {
		return nil, types.NewErrorf(types.DuplicateVault, "vault %s already exists", params.VaultID)
	} else if !db.IsNotFoundError(err) {
		return nil, types.WrapError(types.InternalServiceError, err)
	}

	tip, terr := s.tipHeight()
	if terr != nil {
		return nil, terr
	}

	vaultCustody := types.VaultCustody(params.VaultID)
	if params.InitialAmount > 0 {
		if err := s.ledger.Transfer(ctx, types.CustodyID(params.Owner), vaultCustody, params.InitialAmount); err != nil {
			return nil, types.WrapError(types.TransferFailed, err)
		}
	}

	vault = &model.VaultDocument{
		ID:               params.VaultID,
		Owner:            params.Owner,
		Name:             params.Name,
		PrivacyTier:      params.PrivacyTier,
		InheritanceDelay: params.InheritanceDelay,
		GracePeriod:      params.GracePeriod,
		State:            types.StateActive,
		Balance:          params.InitialAmount,
		Locked:           params.Locked,
		AutoDistribute:   params.AutoDistribute,
		MinInheritance:   params.MinInheritance,
		CreatedHeight:    tip,
	}
	pol := model.NewProofOfLifeDocument(params.VaultID, tip, params.InheritanceDelay, params.GracePeriod)

	if err := s.db.SaveNewVault(ctx, vault, pol); err != nil {
		if params.InitialAmount > 0 {
			s.compensateTransfer(ctx, vaultCustody, types.CustodyID(params.Owner), params.InitialAmount)
		}
		if db.IsDuplicateKeyError(err) {
			return nil, types.NewErrorf(types.DuplicateVault, "vault %s already exists", params.VaultID)
		}
		return nil, types.WrapError(types.InternalServiceError, err)
	}

	if err := s.db.IncrementVaultStats(ctx, 1, int64(params.InitialAmount)); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("vault_id", params.VaultID).
			Msg("failed to update vault stats on creation")
	}

	event := types.NewVaultEvent(types.EventVaultCreated, params.VaultID, tip)
	event.Amount = params.InitialAmount
	s.publishEvent(ctx, event)

	return vault, nil
}

// Deposit moves funds from the owner into vault custody and credits the
// vault balance.
func (s *Service) Deposit(ctx context.Context, vaultID, caller string, amount uint64) (resultErr *types.Error) {
	defer func() { metrics.RecordOperation("deposit", resultErr) }()

	if amount == 0 {
		return types.NewError(types.InvalidAmount, "deposit amount must be positive")
	}

	unlock := s.vaultLocks.Lock(vaultID)
	defer unlock()

	vault, verr := s.getVault(ctx, vaultID)
	if verr != nil {
		return verr
	}
	if perr := s.ensureNotPaused(ctx, vaultID); perr != nil {
		return perr
	}
	if caller != vault.Owner {
		return types.NewError(types.Unauthorized, "only the vault owner can deposit")
	}

	vaultCustody := types.VaultCustody(vaultID)
	if err := s.ledger.Transfer(ctx, types.CustodyID(caller), vaultCustody, amount); err != nil {
		return types.WrapError(types.TransferFailed, err)
	}

	if err := s.db.AddToVaultBalance(ctx, vaultID, amount); err != nil {
		s.compensateTransfer(ctx, vaultCustody, types.CustodyID(caller), amount)
		return types.WrapError(types.InternalServiceError, err)
	}

	if err := s.db.IncrementVaultStats(ctx, 0, int64(amount)); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("vault_id", vaultID).
			Msg("failed to update vault stats on deposit")
	}
	return nil
}

// Withdraw moves funds from vault custody back to the owner. A locked
// vault refuses owner withdrawal until the lock flag is cleared.
func (s *Service) Withdraw(ctx context.Context, vaultID, caller string, amount uint64) (resultErr *types.Error) {
	defer func() { metrics.RecordOperation("withdraw", resultErr) }()

	if amount == 0 {
		return types.NewError(types.InvalidAmount, "withdraw amount must be positive")
	}

	unlock := s.vaultLocks.Lock(vaultID)
	defer unlock()

	vault, verr := s.getVault(ctx, vaultID)
	if verr != nil {
		return verr
	}
	if perr := s.ensureNotPaused(ctx, vaultID); perr != nil {
		return perr
	}
	if caller != vault.Owner {
		return types.NewError(types.Unauthorized, "only the vault owner can withdraw")
	}
	if vault.Locked {
		return types.NewErrorf(types.VaultLocked, "vault %s is locked against withdrawal", vaultID)
	}
	if amount > vault.Balance {
		return types.NewErrorf(types.InsufficientBalance,
			"withdraw %d exceeds balance %d", amount, vault.Balance)
	}

	vaultCustody := types.VaultCustody(vaultID)
	if err := s.ledger.Transfer(ctx, vaultCustody, types.CustodyID(caller), amount); err != nil {
		return types.WrapError(types.TransferFailed, err)
	}

	if err := s.db.SubtractFromVaultBalance(ctx, vaultID, amount); err != nil {
		s.compensateTransfer(ctx, types.CustodyID(caller), vaultCustody, amount)
		if db.IsNotFoundError(err) {
			return types.NewErrorf(types.InsufficientBalance,
				"withdraw %d exceeds balance", amount)
		}
		return types.WrapError(types.InternalServiceError, err)
	}

	if err := s.db.IncrementVaultStats(ctx, 0, -int64(amount)); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("vault_id", vaultID).
			Msg("failed to update vault stats on withdraw")
	}
	return nil
}

// GetVault serves the vault record to its owner, the protocol admin, or a
// professional with an access grant.
func (s *Service) GetVault(ctx context.Context, vaultID, caller string) (*model.VaultDocument, *types.Error) {
	vault, verr := s.getVault(ctx, vaultID)
	if verr != nil {
		return nil, verr
	}

	if caller == vault.Owner {
		return vault, nil
	}
	state, aerr := s.adminState(ctx)
	if aerr != nil {
		return nil, aerr
	}
	if caller == state.AdminID {
		return vault, nil
	}
	if _, err := s.db.GetAccessGrant(ctx, vaultID, caller); err == nil {
		return vault, nil
	}
	return nil, types.NewError(types.Unauthorized, "no read access to vault")
}

func (s *Service) GetTotalVaults(ctx context.Context) (uint64, *types.Error) {
	stats, err := s.db.GetVaultStats(ctx)
	if err != nil {
		return 0, types.WrapError(types.InternalServiceError, err)
	}
	return stats.TotalVaults, nil
}

func (s *Service) GetTotalLocked(ctx context.Context) (uint64, *types.Error) {
	stats, err := s.db.GetVaultStats(ctx)
	if err != nil {
		return 0, types.WrapError(types.InternalServiceError, err)
	}
	return stats.TotalLocked, nil
}

// compensateTransfer reverses a ledger transfer after the surrounding
// operation failed to commit. Failures here leave custody and the record
// out of sync and are loudly logged for manual reconciliation.
func (s *Service) compensateTransfer(ctx context.Context, from, to types.CustodyID, amount uint64) {
	if err := s.ledger.Transfer(ctx, from, to, amount); err != nil {
		log.Ctx(ctx).Error().
			Err(err).
			Stringer("from", from).
			Stringer("to", to).
			Uint64("amount", amount).
			Msg("compensating transfer failed, custody out of sync with ledger record")
	}
}
