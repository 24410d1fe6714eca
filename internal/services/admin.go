package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/legacylock-io/sbtc-legacy-vault/internal/db/model"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/observability/metrics"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/types"
)

const (
	// maxProtocolFeeBps is the hard ceiling on the protocol fee (10%),
	// independent of any per-vault value.
	maxProtocolFeeBps = 1000

	minAccessLevel = 1
	maxAccessLevel = 3
)

// SetProtocolFee updates the protocol-wide fee charged on claims.
func (s *Service) SetProtocolFee(ctx context.Context, caller string, bps uint32) (resultErr *types.Error) {
	defer func() { metrics.RecordOperation("set_protocol_fee", resultErr) }()

	state, aerr := s.adminState(ctx)
	if aerr != nil {
		return aerr
	}
	if caller != state.AdminID {
		return types.NewError(types.Unauthorized, "only the admin can set the protocol fee")
	}
	if bps > maxProtocolFeeBps {
		return types.NewErrorf(types.InvalidAmount,
			"protocol fee %d bps exceeds ceiling %d", bps, maxProtocolFeeBps)
	}

	if err := s.db.SetProtocolFee(ctx, bps); err != nil {
		return types.WrapError(types.InternalServiceError, err)
	}

	log.Ctx(ctx).Info().Uint32("protocol_fee_bps", bps).Msg("protocol fee updated")
	return nil
}

// Pause blocks all owner- and beneficiary-facing operations on a vault
// until resumed. Read queries are unaffected.
func (s *Service) Pause(ctx context.Context, vaultID, caller string) (resultErr *types.Error) {
	defer func() { metrics.RecordOperation("pause", resultErr) }()

	state, aerr := s.adminState(ctx)
	if aerr != nil {
		return aerr
	}
	if caller != state.AdminID {
		return types.NewError(types.Unauthorized, "only the admin can pause a vault")
	}
	if _, verr := s.getVault(ctx, vaultID); verr != nil {
		return verr
	}

	if err := s.db.AddPausedVault(ctx, vaultID); err != nil {
		return types.WrapError(types.InternalServiceError, err)
	}

	log.Ctx(ctx).Info().Str("vault_id", vaultID).Msg("vault paused")
	return nil
}

// Resume lifts an admin pause; the vault continues from the exact state it
// was paused in.
func (s *Service) Resume(ctx context.Context, vaultID, caller string) (resultErr *types.Error) {
	defer func() { metrics.RecordOperation("resume", resultErr) }()

	state, aerr := s.adminState(ctx)
	if aerr != nil {
		return aerr
	}
	if caller != state.AdminID {
		return types.NewError(types.Unauthorized, "only the admin can resume a vault")
	}

	if err := s.db.RemovePausedVault(ctx, vaultID); err != nil {
		return types.WrapError(types.InternalServiceError, err)
	}

	log.Ctx(ctx).Info().Str("vault_id", vaultID).Msg("vault resumed")
	return nil
}

// GrantProfessionalAccess records a read-only capability for a grantee
// (lawyer, executor), independent of the ledger and lifecycle state.
func (s *Service) GrantProfessionalAccess(
	ctx context.Context, vaultID, caller, grantee string, level uint8,
) (resultErr *types.Error) {
	defer func() { metrics.RecordOperation("grant_professional_access", resultErr) }()

	vault, verr := s.getVault(ctx, vaultID)
	if verr != nil {
		return verr
	}
	if caller != vault.Owner {
		return types.NewError(types.Unauthorized, "only the vault owner can grant access")
	}
	if level < minAccessLevel || level > maxAccessLevel {
		return types.NewErrorf(types.InvalidAccessLevel,
			"access level %d outside %d-%d", level, minAccessLevel, maxAccessLevel)
	}

	tip, terr := s.tipHeight()
	if terr != nil {
		return terr
	}

	grant := &model.AccessGrantDocument{
		ID:            model.AccessGrantID(vaultID, grantee),
		VaultID:       vaultID,
		Grantee:       grantee,
		AccessLevel:   level,
		GrantedHeight: tip,
	}
	if err := s.db.SaveAccessGrant(ctx, grant); err != nil {
		return types.WrapError(types.InternalServiceError, err)
	}
	return nil
}
