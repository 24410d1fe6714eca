package services

import (
	"context"
	"slices"

	"github.com/legacylock-io/sbtc-legacy-vault/internal/db"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/db/model"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/observability/metrics"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/types"
)

// totalBps is 100% in basis points.
const totalBps = 10_000

type AddBeneficiaryParams struct {
	VaultID       string
	Caller        string
	Index         uint32
	Recipient     string
	AllocationBps uint32
	MinAmount     uint64
	Metadata      []byte // encrypted blob, never interpreted
}

// AddBeneficiary appends an allocation slot to a vault. Indexes are
// strictly sequential and the cumulative allocation across all slots can
// never exceed 100%. The set stays editable while the vault is ACTIVE,
// WARNING, or GRACE_PERIOD; it freezes once the status mirror records
// EXPIRED, before any trigger.
func (s *Service) AddBeneficiary(ctx context.Context, params AddBeneficiaryParams) (resultErr *types.Error) {
	defer func() { metrics.RecordOperation("add_beneficiary", resultErr) }()

	unlock := s.vaultLocks.Lock(params.VaultID)
	defer unlock()

	vault, verr := s.getVault(ctx, params.VaultID)
	if verr != nil {
		return verr
	}
	if perr := s.ensureNotPaused(ctx, params.VaultID); perr != nil {
		return perr
	}
	if params.Caller != vault.Owner {
		return types.NewError(types.Unauthorized, "only the vault owner can add beneficiaries")
	}
	if !slices.Contains(types.QualifiedStatesForBeneficiaryAdd(), vault.State) {
		return types.NewErrorf(types.AlreadyTriggered,
			"beneficiary set of vault %s is frozen in state %s", params.VaultID, vault.State)
	}
	if params.AllocationBps == 0 || params.AllocationBps > totalBps {
		return types.NewErrorf(types.InvalidAllocation,
			"allocation %d bps outside 1-%d", params.AllocationBps, totalBps)
	}

	existing, err := s.db.GetBeneficiariesByVault(ctx, params.VaultID)
	if err != nil {
		return types.WrapError(types.InternalServiceError, err)
	}
	if params.Index != uint32(len(existing)) {
		return types.NewErrorf(types.InvalidIndex,
			"index %d out of order, next index is %d", params.Index, len(existing))
	}

	var allocated uint32
	for _, b := range existing {
		allocated += b.AllocationBps
	}
	if allocated+params.AllocationBps > totalBps {
		return types.NewErrorf(types.InvalidAllocation,
			"allocation %d bps would push total to %d, above %d",
			params.AllocationBps, allocated+params.AllocationBps, totalBps)
	}

	doc := model.NewBeneficiaryDocument(
		params.VaultID, params.Index, params.Recipient,
		params.AllocationBps, params.MinAmount, params.Metadata,
	)
	if err := s.db.SaveNewBeneficiary(ctx, doc); err != nil {
		if db.IsDuplicateKeyError(err) {
			return types.NewErrorf(types.InvalidIndex,
				"beneficiary index %d already taken", params.Index)
		}
		return types.WrapError(types.InternalServiceError, err)
	}
	return nil
}

// GetBeneficiary returns one allocation slot of a vault.
func (s *Service) GetBeneficiary(
	ctx context.Context, vaultID string, index uint32,
) (*model.BeneficiaryDocument, *types.Error) {
	beneficiary, err := s.db.GetBeneficiary(ctx, vaultID, index)
	if err != nil {
		if db.IsNotFoundError(err) {
			return nil, types.NewErrorf(types.NotFound,
				"beneficiary %d of vault %s not found", index, vaultID)
		}
		return nil, types.WrapError(types.InternalServiceError, err)
	}
	return beneficiary, nil
}
