package services

import (
	"context"
	"math/bits"

	"github.com/rs/zerolog/log"

	"github.com/legacylock-io/sbtc-legacy-vault/internal/db"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/db/model"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/observability/metrics"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/types"
)

// Payout describes one successful beneficiary distribution.
type Payout struct {
	Index     uint32
	Recipient string
	Net       uint64
}

// DistributionFailure describes one beneficiary that could not be paid out
// during auto-distribution. Failures never block later beneficiaries.
type DistributionFailure struct {
	Index   uint32
	Code    types.ErrorCode
	Message string
}

// TriggerResult reports the state after triggering and, for auto-distribute
// vaults, the per-beneficiary outcome.
type TriggerResult struct {
	State    types.VaultState
	Payouts  []Payout
	Failures []DistributionFailure
}

// Trigger starts inheritance execution. Any caller may trigger once the
// proof-of-life grace period has fully elapsed.
func (s *Service) Trigger(ctx context.Context, vaultID, caller string) (result *TriggerResult, resultErr *types.Error) {
	defer func() { metrics.RecordOperation("trigger", resultErr) }()

	unlock := s.vaultLocks.Lock(vaultID)
	defer unlock()

	vault, verr := s.getVault(ctx, vaultID)
	if verr != nil {
		return nil, verr
	}
	if perr := s.ensureNotPaused(ctx, vaultID); perr != nil {
		return nil, perr
	}
	if vault.State.IsTriggered() {
		return nil, types.NewErrorf(types.AlreadyTriggered,
			"vault %s is already in state %s", vaultID, vault.State)
	}
	if vault.Balance == 0 {
		return nil, types.NewErrorf(types.VaultNotFunded, "vault %s has no balance", vaultID)
	}

	pol, perr := s.GetProofOfLife(ctx, vaultID)
	if perr != nil {
		return nil, perr
	}
	tip, terr := s.tipHeight()
	if terr != nil {
		return nil, terr
	}
	if status := Evaluate(pol, tip, s.cfg.Vault.WarningWindow); status != types.PolEligible {
		return nil, types.NewErrorf(types.NotEligible,
			"vault %s is %s, grace ends at tick %d", vaultID, status, pol.GraceEnd)
	}

	if err := s.db.UpdateVaultState(
		ctx, vaultID, types.QualifiedStatesForTrigger(), types.StateTriggered,
	); err != nil {
		if db.IsNotFoundError(err) {
			return nil, types.NewErrorf(types.AlreadyTriggered,
				"vault %s was triggered concurrently", vaultID)
		}
		return nil, types.WrapError(types.InternalServiceError, err)
	}
	if err := s.db.UpdateProofOfLifeStatus(
		ctx, vaultID,
		[]types.PolStatus{types.PolActive, types.PolWarning, types.PolGracePeriod},
		types.PolEligible,
	); err != nil && !db.IsNotFoundError(err) {
		return nil, types.WrapError(types.InternalServiceError, err)
	}

	log.Ctx(ctx).Info().
		Str("vault_id", vaultID).
		Str("triggered_by", caller).
		Uint64("height", tip).
		Msg("inheritance triggered")
	s.publishEvent(ctx, types.NewVaultEvent(types.EventInheritanceTriggered, vaultID, tip))

	result = &TriggerResult{State: types.StateTriggered}
	if !vault.AutoDistribute {
		return result, nil
	}

	s.distributeAll(ctx, vault, tip, result)

	// All beneficiaries processed; failed ones can still claim individually
	// while the vault sits in INHERITED.
	if err := s.db.UpdateVaultState(
		ctx, vaultID, []types.VaultState{types.StateTriggered}, types.StateInherited,
	); err != nil && !db.IsNotFoundError(err) {
		return result, types.WrapError(types.InternalServiceError, err)
	}
	result.State = types.StateInherited
	return result, nil
}

// distributeAll pays out every unclaimed beneficiary in index order. Each
// payout is its own atomic unit: one failure is recorded and the loop moves
// on, leaving prior payouts in place.
func (s *Service) distributeAll(ctx context.Context, vault *model.VaultDocument, tip uint64, result *TriggerResult) {
	beneficiaries, err := s.db.GetBeneficiariesByVault(ctx, vault.ID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("vault_id", vault.ID).
			Msg("failed to load beneficiaries for distribution")
		return
	}

	state, aerr := s.adminState(ctx)
	if aerr != nil {
		log.Ctx(ctx).Error().Err(aerr).Str("vault_id", vault.ID).
			Msg("failed to load admin state for distribution")
		return
	}

	balance := vault.Balance
	for i := range beneficiaries {
		b := &beneficiaries[i]
		if b.Claimed {
			continue
		}

		net, gross, cerr := s.executeClaim(ctx, vault.ID, balance, b, state.ProtocolFeeBps, tip)
		if cerr != nil {
			result.Failures = append(result.Failures, DistributionFailure{
				Index:   b.Index,
				Code:    cerr.Code,
				Message: cerr.Message,
			})
			log.Ctx(ctx).Warn().
				Str("vault_id", vault.ID).
				Uint32("beneficiary_index", b.Index).
				Str("code", cerr.Code.String()).
				Msg("beneficiary distribution failed, continuing")
			continue
		}

		balance -= gross
		result.Payouts = append(result.Payouts, Payout{
			Index:     b.Index,
			Recipient: b.Recipient,
			Net:       net,
		})
	}
}

// Claim pays out one beneficiary's share. The gross amount is computed
// against the vault's balance at claim time, not a balance frozen at
// trigger time; late claimants receive their percentage of whatever
// remains.
func (s *Service) Claim(ctx context.Context, vaultID string, index uint32, caller string) (net uint64, resultErr *types.Error) {
	defer func() { metrics.RecordOperation("claim", resultErr) }()

	unlock := s.vaultLocks.Lock(vaultID)
	defer unlock()

	vault, verr := s.getVault(ctx, vaultID)
	if verr != nil {
		return 0, verr
	}
	if perr := s.ensureNotPaused(ctx, vaultID); perr != nil {
		return 0, perr
	}
	if !vault.State.IsTriggered() {
		return 0, types.NewErrorf(types.NotTriggered,
			"vault %s is in state %s, claims require a triggered vault", vaultID, vault.State)
	}

	beneficiary, berr := s.GetBeneficiary(ctx, vaultID, index)
	if berr != nil {
		return 0, berr
	}
	if caller != beneficiary.Recipient {
		return 0, types.NewError(types.Unauthorized, "only the designated recipient can claim")
	}
	if beneficiary.Claimed {
		return 0, types.NewErrorf(types.AlreadyClaimed,
			"beneficiary %d of vault %s already claimed", index, vaultID)
	}

	state, aerr := s.adminState(ctx)
	if aerr != nil {
		return 0, aerr
	}
	tip, terr := s.tipHeight()
	if terr != nil {
		return 0, terr
	}

	net, _, cerr := s.executeClaim(ctx, vaultID, vault.Balance, beneficiary, state.ProtocolFeeBps, tip)
	if cerr != nil {
		return 0, cerr
	}
	return net, nil
}

// executeClaim performs one beneficiary payout as a single atomic unit:
// net to the recipient, fee to the protocol sink, gross off the vault
// balance, claimed flag set. All integer math uses floor division.
func (s *Service) executeClaim(
	ctx context.Context,
	vaultID string,
	balance uint64,
	beneficiary *model.BeneficiaryDocument,
	protocolFeeBps uint32,
	tip uint64,
) (net, gross uint64, resultErr *types.Error) {
	gross = mulBps(balance, uint64(beneficiary.AllocationBps))
	fee := mulBps(gross, uint64(protocolFeeBps))
	net = gross - fee

	if net < beneficiary.MinAmount {
		return 0, 0, types.NewErrorf(types.BelowMinimum,
			"net %d below beneficiary minimum %d", net, beneficiary.MinAmount)
	}

	vaultCustody := types.VaultCustody(vaultID)
	recipient := types.CustodyID(beneficiary.Recipient)

	if net > 0 {
		if err := s.ledger.Transfer(ctx, vaultCustody, recipient, net); err != nil {
			return 0, 0, types.WrapError(types.TransferFailed, err)
		}
	}
	if fee > 0 {
		if err := s.ledger.Transfer(ctx, vaultCustody, s.feeSink, fee); err != nil {
			if net > 0 {
				s.compensateTransfer(ctx, recipient, vaultCustody, net)
			}
			return 0, 0, types.WrapError(types.TransferFailed, err)
		}
	}

	if err := s.db.MarkBeneficiaryClaimed(ctx, vaultID, beneficiary.Index, net); err != nil {
		s.compensateClaim(ctx, vaultCustody, recipient, net, fee)
		if db.IsNotFoundError(err) {
			return 0, 0, types.NewErrorf(types.AlreadyClaimed,
				"beneficiary %d of vault %s already claimed", beneficiary.Index, vaultID)
		}
		return 0, 0, types.WrapError(types.InternalServiceError, err)
	}

	if gross > 0 {
		if err := s.db.SubtractFromVaultBalance(ctx, vaultID, gross); err != nil {
			if uerr := s.db.UnmarkBeneficiaryClaimed(ctx, vaultID, beneficiary.Index); uerr != nil {
				log.Ctx(ctx).Error().Err(uerr).Str("vault_id", vaultID).
					Uint32("beneficiary_index", beneficiary.Index).
					Msg("failed to revert claim mark during compensation")
			}
			s.compensateClaim(ctx, vaultCustody, recipient, net, fee)
			return 0, 0, types.WrapError(types.InternalServiceError, err)
		}
		if err := s.db.IncrementVaultStats(ctx, 0, -int64(gross)); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("vault_id", vaultID).
				Msg("failed to update vault stats on claim")
		}
	}

	event := types.NewVaultEvent(types.EventShareClaimed, vaultID, tip)
	event.Recipient = beneficiary.Recipient
	event.Amount = net
	s.publishEvent(ctx, event)

	return net, gross, nil
}

// mulBps scales amount by a basis-point fraction through a 128-bit
// intermediate so balances near the top of the uint64 range do not wrap.
// bps never exceeds totalBps, which keeps the quotient in uint64.
func mulBps(amount, bps uint64) uint64 {
	hi, lo := bits.Mul64(amount, bps)
	quo, _ := bits.Div64(hi, lo, totalBps)
	return quo
}

// compensateClaim reverses both legs of a claim payout.
func (s *Service) compensateClaim(ctx context.Context, vaultCustody, recipient types.CustodyID, net, fee uint64) {
	if net > 0 {
		s.compensateTransfer(ctx, recipient, vaultCustody, net)
	}
	if fee > 0 {
		s.compensateTransfer(ctx, s.feeSink, vaultCustody, fee)
	}
}
