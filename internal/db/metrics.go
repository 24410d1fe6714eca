package db

import (
	"context"
	"time"

	"github.com/legacylock-io/sbtc-legacy-vault/internal/db/model"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/observability/metrics"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/types"
)

// DbWithMetrics decorates a DbInterface with per-method latency metrics.
type DbWithMetrics struct {
	db DbInterface
}

func NewDbWithMetrics(db DbInterface) *DbWithMetrics {
	return &DbWithMetrics{db: db}
}

func (d *DbWithMetrics) run(method string, f func() error) error {
	start := time.Now()
	err := f()
	metrics.ObserveDbLatency(method, time.Since(start), err)
	return err
}

func (d *DbWithMetrics) Ping(ctx context.Context) error {
	return d.run("Ping", func() error {
		return d.db.Ping(ctx)
	})
}

func (d *DbWithMetrics) SaveNewVault(ctx context.Context, vault *model.VaultDocument, pol *model.ProofOfLifeDocument) error {
	return d.run("SaveNewVault", func() error {
		return d.db.SaveNewVault(ctx, vault, pol)
	})
}

func (d *DbWithMetrics) GetVault(ctx context.Context, vaultID string) (result *model.VaultDocument, err error) {
	//nolint:errcheck
	d.run("GetVault", func() error {
		result, err = d.db.GetVault(ctx, vaultID)
		return err
	})

	return
}

func (d *DbWithMetrics) UpdateVaultState(
	ctx context.Context,
	vaultID string,
	qualifiedPreviousStates []types.VaultState,
	newState types.VaultState,
) error {
	return d.run("UpdateVaultState", func() error {
		return d.db.UpdateVaultState(ctx, vaultID, qualifiedPreviousStates, newState)
	})
}

func (d *DbWithMetrics) AddToVaultBalance(ctx context.Context, vaultID string, amount uint64) error {
	return d.run("AddToVaultBalance", func() error {
		return d.db.AddToVaultBalance(ctx, vaultID, amount)
	})
}

func (d *DbWithMetrics) SubtractFromVaultBalance(ctx context.Context, vaultID string, amount uint64) error {
	return d.run("SubtractFromVaultBalance", func() error {
		return d.db.SubtractFromVaultBalance(ctx, vaultID, amount)
	})
}

func (d *DbWithMetrics) GetProofOfLife(ctx context.Context, vaultID string) (result *model.ProofOfLifeDocument, err error) {
	//nolint:errcheck
	d.run("GetProofOfLife", func() error {
		result, err = d.db.GetProofOfLife(ctx, vaultID)
		return err
	})

	return
}

func (d *DbWithMetrics) ResetProofOfLife(ctx context.Context, vaultID string, lastCheckIn, deadline, graceEnd uint64) error {
	return d.run("ResetProofOfLife", func() error {
		return d.db.ResetProofOfLife(ctx, vaultID, lastCheckIn, deadline, graceEnd)
	})
}

func (d *DbWithMetrics) UpdateProofOfLifeStatus(
	ctx context.Context,
	vaultID string,
	qualifiedPreviousStatuses []types.PolStatus,
	newStatus types.PolStatus,
) error {
	return d.run("UpdateProofOfLifeStatus", func() error {
		return d.db.UpdateProofOfLifeStatus(ctx, vaultID, qualifiedPreviousStatuses, newStatus)
	})
}

func (d *DbWithMetrics) FindApproachingDeadline(ctx context.Context, tipHeight, warningWindow, limit uint64) (result []model.ProofOfLifeDocument, err error) {
	//nolint:errcheck
	d.run("FindApproachingDeadline", func() error {
		result, err = d.db.FindApproachingDeadline(ctx, tipHeight, warningWindow, limit)
		return err
	})

	return
}

func (d *DbWithMetrics) FindPastDeadline(ctx context.Context, tipHeight, limit uint64) (result []model.ProofOfLifeDocument, err error) {
	//nolint:errcheck
	d.run("FindPastDeadline", func() error {
		result, err = d.db.FindPastDeadline(ctx, tipHeight, limit)
		return err
	})

	return
}

func (d *DbWithMetrics) FindPastGraceEnd(ctx context.Context, tipHeight, limit uint64) (result []model.ProofOfLifeDocument, err error) {
	//nolint:errcheck
	d.run("FindPastGraceEnd", func() error {
		result, err = d.db.FindPastGraceEnd(ctx, tipHeight, limit)
		return err
	})

	return
}

func (d *DbWithMetrics) SaveNewBeneficiary(ctx context.Context, beneficiary *model.BeneficiaryDocument) error {
	return d.run("SaveNewBeneficiary", func() error {
		return d.db.SaveNewBeneficiary(ctx, beneficiary)
	})
}

func (d *DbWithMetrics) GetBeneficiary(ctx context.Context, vaultID string, index uint32) (result *model.BeneficiaryDocument, err error) {
	//nolint:errcheck
	d.run("GetBeneficiary", func() error {
		result, err = d.db.GetBeneficiary(ctx, vaultID, index)
		return err
	})

	return
}

func (d *DbWithMetrics) GetBeneficiariesByVault(ctx context.Context, vaultID string) (result []model.BeneficiaryDocument, err error) {
	//nolint:errcheck
	d.run("GetBeneficiariesByVault", func() error {
		result, err = d.db.GetBeneficiariesByVault(ctx, vaultID)
		return err
	})

	return
}

func (d *DbWithMetrics) MarkBeneficiaryClaimed(ctx context.Context, vaultID string, index uint32, claimedAmount uint64) error {
	return d.run("MarkBeneficiaryClaimed", func() error {
		return d.db.MarkBeneficiaryClaimed(ctx, vaultID, index, claimedAmount)
	})
}

func (d *DbWithMetrics) UnmarkBeneficiaryClaimed(ctx context.Context, vaultID string, index uint32) error {
	return d.run("UnmarkBeneficiaryClaimed", func() error {
		return d.db.UnmarkBeneficiaryClaimed(ctx, vaultID, index)
	})
}

func (d *DbWithMetrics) InitAdminState(ctx context.Context, adminID string, protocolFeeBps uint32) error {
	return d.run("InitAdminState", func() error {
		return d.db.InitAdminState(ctx, adminID, protocolFeeBps)
	})
}

func (d *DbWithMetrics) GetAdminState(ctx context.Context) (result *model.AdminStateDocument, err error) {
	//nolint:errcheck
	d.run("GetAdminState", func() error {
		result, err = d.db.GetAdminState(ctx)
		return err
	})

	return
}

func (d *DbWithMetrics) SetProtocolFee(ctx context.Context, bps uint32) error {
	return d.run("SetProtocolFee", func() error {
		return d.db.SetProtocolFee(ctx, bps)
	})
}

func (d *DbWithMetrics) AddPausedVault(ctx context.Context, vaultID string) error {
	return d.run("AddPausedVault", func() error {
		return d.db.AddPausedVault(ctx, vaultID)
	})
}

func (d *DbWithMetrics) RemovePausedVault(ctx context.Context, vaultID string) error {
	return d.run("RemovePausedVault", func() error {
		return d.db.RemovePausedVault(ctx, vaultID)
	})
}

func (d *DbWithMetrics) SaveAccessGrant(ctx context.Context, grant *model.AccessGrantDocument) error {
	return d.run("SaveAccessGrant", func() error {
		return d.db.SaveAccessGrant(ctx, grant)
	})
}

func (d *DbWithMetrics) GetAccessGrant(ctx context.Context, vaultID, grantee string) (result *model.AccessGrantDocument, err error) {
	//nolint:errcheck
	d.run("GetAccessGrant", func() error {
		result, err = d.db.GetAccessGrant(ctx, vaultID, grantee)
		return err
	})

	return
}

func (d *DbWithMetrics) IncrementVaultStats(ctx context.Context, vaultsDelta, lockedDelta int64) error {
	return d.run("IncrementVaultStats", func() error {
		return d.db.IncrementVaultStats(ctx, vaultsDelta, lockedDelta)
	})
}

func (d *DbWithMetrics) GetVaultStats(ctx context.Context) (result *model.VaultStatsDocument, err error) {
	//nolint:errcheck
	d.run("GetVaultStats", func() error {
		result, err = d.db.GetVaultStats(ctx)
		return err
	})

	return
}
