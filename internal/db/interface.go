package db

import (
	"context"

	"github.com/legacylock-io/sbtc-legacy-vault/internal/db/model"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/types"
)

type DbInterface interface {
	Ping(ctx context.Context) error

	SaveNewVault(ctx context.Context, vault *model.VaultDocument, pol *model.ProofOfLifeDocument) error
	GetVault(ctx context.Context, vaultID string) (*model.VaultDocument, error)
	UpdateVaultState(
		ctx context.Context,
		vaultID string,
		qualifiedPreviousStates []types.VaultState,
		newState types.VaultState,
	) error
	AddToVaultBalance(ctx context.Context, vaultID string, amount uint64) error
	SubtractFromVaultBalance(ctx context.Context, vaultID string, amount uint64) error

	GetProofOfLife(ctx context.Context, vaultID string) (*model.ProofOfLifeDocument, error)
	ResetProofOfLife(ctx context.Context, vaultID string, lastCheckIn, deadline, graceEnd uint64) error
	UpdateProofOfLifeStatus(
		ctx context.Context,
		vaultID string,
		qualifiedPreviousStatuses []types.PolStatus,
		newStatus types.PolStatus,
	) error
	FindApproachingDeadline(ctx context.Context, tipHeight, warningWindow, limit uint64) ([]model.ProofOfLifeDocument, error)
	FindPastDeadline(ctx context.Context, tipHeight, limit uint64) ([]model.ProofOfLifeDocument, error)
	FindPastGraceEnd(ctx context.Context, tipHeight, limit uint64) ([]model.ProofOfLifeDocument, error)

	SaveNewBeneficiary(ctx context.Context, beneficiary *model.BeneficiaryDocument) error
	GetBeneficiary(ctx context.Context, vaultID string, index uint32) (*model.BeneficiaryDocument, error)
	GetBeneficiariesByVault(ctx context.Context, vaultID string) ([]model.BeneficiaryDocument, error)
	MarkBeneficiaryClaimed(ctx context.Context, vaultID string, index uint32, claimedAmount uint64) error
	UnmarkBeneficiaryClaimed(ctx context.Context, vaultID string, index uint32) error

	InitAdminState(ctx context.Context, adminID string, protocolFeeBps uint32) error
	GetAdminState(ctx context.Context) (*model.AdminStateDocument, error)
	SetProtocolFee(ctx context.Context, bps uint32) error
	AddPausedVault(ctx context.Context, vaultID string) error
	RemovePausedVault(ctx context.Context, vaultID string) error
	SaveAccessGrant(ctx context.Context, grant *model.AccessGrantDocument) error
	GetAccessGrant(ctx context.Context, vaultID, grantee string) (*model.AccessGrantDocument, error)

	IncrementVaultStats(ctx context.Context, vaultsDelta, lockedDelta int64) error
	GetVaultStats(ctx context.Context) (*model.VaultStatsDocument, error)
}
