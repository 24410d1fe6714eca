package services

import (
	"context"

	"github.com/legacylock-io/sbtc-legacy-vault/internal/db"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/db/model"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/observability/metrics"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/types"
)

// Evaluate derives the proof-of-life status from deadline arithmetic. This
// is the sole source of truth for trigger eligibility; no other component
// recomputes deadline math.
func Evaluate(pol *model.ProofOfLifeDocument, now, warningWindow uint64) types.PolStatus {
	switch {
	case now >= pol.GraceEnd:
		return types.PolEligible
	case now >= pol.Deadline:
		return types.PolGracePeriod
	case pol.Deadline-now <= warningWindow:
		return types.PolWarning
	default:
		return types.PolActive
	}
}

// CheckIn records owner activity: the last check-in moves to the current
// tick, both derived ticks are recomputed and the vault returns to ACTIVE.
func (s *Service) CheckIn(ctx context.Context, vaultID, caller string) (resultErr *types.Error) {
	defer func() { metrics.RecordOperation("check_in", resultErr) }()

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
		return types.NewError(types.Unauthorized, "only the vault owner can check in")
	}
	if vault.State.IsTriggered() {
		return types.NewErrorf(types.AlreadyTriggered,
			"vault %s is already in state %s", vaultID, vault.State)
	}

	tip, terr := s.tipHeight()
	if terr != nil {
		return terr
	}

	deadline := tip + vault.InheritanceDelay
	graceEnd := deadline + vault.GracePeriod
	if err := s.db.ResetProofOfLife(ctx, vaultID, tip, deadline, graceEnd); err != nil {
		if db.IsNotFoundError(err) {
			return types.NewErrorf(types.NotFound, "proof of life for vault %s not found", vaultID)
		}
		return types.WrapError(types.InternalServiceError, err)
	}

	if err := s.db.UpdateVaultState(
		ctx, vaultID, types.QualifiedStatesForCheckIn(), types.StateActive,
	); err != nil && !db.IsNotFoundError(err) {
		return types.WrapError(types.InternalServiceError, err)
	}

	s.publishEvent(ctx, types.NewVaultEvent(types.EventCheckInRecorded, vaultID, tip))
	return nil
}

// GetProofOfLife returns the check-in record for a vault.
func (s *Service) GetProofOfLife(ctx context.Context, vaultID string) (*model.ProofOfLifeDocument, *types.Error) {
	pol, err := s.db.GetProofOfLife(ctx, vaultID)
	if err != nil {
		if db.IsNotFoundError(err) {
			return nil, types.NewErrorf(types.NotFound, "proof of life for vault %s not found", vaultID)
		}
		return nil, types.WrapError(types.InternalServiceError, err)
	}
	return pol, nil
}

// EvaluateEligibility evaluates the vault's proof-of-life against the
// current tip. Read-only; the stored status mirror is not advanced here.
func (s *Service) EvaluateEligibility(ctx context.Context, vaultID string) (types.PolStatus, *types.Error) {
	pol, perr := s.GetProofOfLife(ctx, vaultID)
	if perr != nil {
		return "", perr
	}
	tip, terr := s.tipHeight()
	if terr != nil {
		return "", terr
	}
	return Evaluate(pol, tip, s.cfg.Vault.WarningWindow), nil
}
