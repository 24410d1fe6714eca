package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legacylock-io/sbtc-legacy-vault/internal/types"
)

func TestTrigger(t *testing.T) {
	ctx := t.Context()

	t.Run("not eligible before grace end", func(t *testing.T) {
		env := newTestEnv(t)
		env.createVault(t, "vault-1", "owner-1", 1_000, false)

		_, err := env.svc.Trigger(ctx, "vault-1", "anyone")
		require.NotNil(t, err)
		assert.Equal(t, types.NotEligible, err.Code)

		// inside the grace period is still too early
		pol, perr := env.svc.GetProofOfLife(ctx, "vault-1")
		require.Nil(t, perr)
		env.chain.setHeight(pol.GraceEnd - 1)

		_, err = env.svc.Trigger(ctx, "vault-1", "anyone")
		require.NotNil(t, err)
		assert.Equal(t, types.NotEligible, err.Code)
	})

	t.Run("unfunded vault cannot trigger", func(t *testing.T) {
		env := newTestEnv(t)
		env.createVault(t, "vault-1", "owner-1", 0, false)
		env.advancePastGraceEnd(t, "vault-1")

		_, err := env.svc.Trigger(ctx, "vault-1", "anyone")
		require.NotNil(t, err)
		assert.Equal(t, types.VaultNotFunded, err.Code)
	})

	t.Run("any caller may trigger an eligible vault", func(t *testing.T) {
		env := newTestEnv(t)
		env.createVault(t, "vault-1", "owner-1", 1_000, false)
		env.advancePastGraceEnd(t, "vault-1")

		result, err := env.svc.Trigger(ctx, "vault-1", "random-watcher")
		require.Nil(t, err)
		assert.Equal(t, types.StateTriggered, result.State)

		vault, gerr := env.svc.GetVault(ctx, "vault-1", "owner-1")
		require.Nil(t, gerr)
		assert.Equal(t, types.StateTriggered, vault.State)

		pol, perr := env.svc.GetProofOfLife(ctx, "vault-1")
		require.Nil(t, perr)
		assert.Equal(t, types.PolEligible, pol.Status)

		assert.Contains(t, env.pub.eventTypes(), types.EventInheritanceTriggered)
	})

	t.Run("second trigger is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		env.createVault(t, "vault-1", "owner-1", 1_000, false)
		env.advancePastGraceEnd(t, "vault-1")

		_, err := env.svc.Trigger(ctx, "vault-1", "anyone")
		require.Nil(t, err)

		_, err = env.svc.Trigger(ctx, "vault-1", "anyone")
		require.NotNil(t, err)
		assert.Equal(t, types.AlreadyTriggered, err.Code)
	})
}

// Full walkthrough: 10,000,000 sats, a 60% beneficiary, 1% protocol fee.
func TestClaimLifecycle(t *testing.T) {
	ctx := t.Context()
	env := newTestEnv(t)
	env.createVault(t, "vault-1", "owner-1", 0, false)
	require.Nil(t, env.svc.Deposit(ctx, "vault-1", "owner-1", 10_000_000))

	require.Nil(t, env.svc.AddBeneficiary(ctx, AddBeneficiaryParams{
		VaultID:       "vault-1",
		Caller:        "owner-1",
		Index:         0,
		Recipient:     "heir-1",
		AllocationBps: 6_000,
		MinAmount:     1_000_000,
	}))

	// claims are rejected until the vault is triggered
	_, err := env.svc.Claim(ctx, "vault-1", 0, "heir-1")
	require.NotNil(t, err)
	assert.Equal(t, types.NotTriggered, err.Code)

	env.advancePastGraceEnd(t, "vault-1")
	_, terr := env.svc.Trigger(ctx, "vault-1", "anyone")
	require.Nil(t, terr)

	_, err = env.svc.Claim(ctx, "vault-1", 0, "impostor")
	require.NotNil(t, err)
	assert.Equal(t, types.Unauthorized, err.Code)

	// gross 6,000,000; fee 60,000; net 5,940,000
	net, err := env.svc.Claim(ctx, "vault-1", 0, "heir-1")
	require.Nil(t, err)
	assert.Equal(t, uint64(5_940_000), net)

	assert.Equal(t, int64(5_940_000), env.ledger.balance("heir-1"))
	assert.Equal(t, int64(60_000), env.ledger.balance(testFeeSink))
	assert.Equal(t, int64(4_000_000), env.ledger.balance(types.VaultCustody("vault-1")))

	vault, gerr := env.svc.GetVault(ctx, "vault-1", "owner-1")
	require.Nil(t, gerr)
	assert.Equal(t, uint64(4_000_000), vault.Balance)

	beneficiary, berr := env.svc.GetBeneficiary(ctx, "vault-1", 0)
	require.Nil(t, berr)
	assert.True(t, beneficiary.Claimed)
	assert.Equal(t, uint64(5_940_000), beneficiary.ClaimedAmount)

	_, err = env.svc.Claim(ctx, "vault-1", 0, "heir-1")
	require.NotNil(t, err)
	assert.Equal(t, types.AlreadyClaimed, err.Code)

	assert.Contains(t, env.pub.eventTypes(), types.EventShareClaimed)
}

// A vault holding the full 21M BTC sat supply: the bps product no longer
// fits uint64, so the payout math must go through the wide intermediate.
func TestClaimFullSupplyBalance(t *testing.T) {
	ctx := t.Context()
	env := newTestEnv(t)
	env.createVault(t, "vault-1", "owner-1", 2_100_000_000_000_000, false)

	require.Nil(t, env.svc.AddBeneficiary(ctx, AddBeneficiaryParams{
		VaultID:       "vault-1",
		Caller:        "owner-1",
		Index:         0,
		Recipient:     "heir-1",
		AllocationBps: 6_000,
	}))

	env.advancePastGraceEnd(t, "vault-1")
	_, terr := env.svc.Trigger(ctx, "vault-1", "anyone")
	require.Nil(t, terr)

	// gross 1,260,000,000,000,000; fee 12,600,000,000,000
	net, err := env.svc.Claim(ctx, "vault-1", 0, "heir-1")
	require.Nil(t, err)
	assert.Equal(t, uint64(1_247_400_000_000_000), net)
	assert.Equal(t, int64(1_247_400_000_000_000), env.ledger.balance("heir-1"))
	assert.Equal(t, int64(12_600_000_000_000), env.ledger.balance(testFeeSink))
}

func TestClaimBelowMinimum(t *testing.T) {
	ctx := t.Context()
	env := newTestEnv(t)
	env.createVault(t, "vault-1", "owner-1", 1_000, false)

	require.Nil(t, env.svc.AddBeneficiary(ctx, AddBeneficiaryParams{
		VaultID:       "vault-1",
		Caller:        "owner-1",
		Index:         0,
		Recipient:     "heir-1",
		AllocationBps: 5_000,
		MinAmount:     10_000,
	}))

	env.advancePastGraceEnd(t, "vault-1")
	_, terr := env.svc.Trigger(ctx, "vault-1", "anyone")
	require.Nil(t, terr)

	_, err := env.svc.Claim(ctx, "vault-1", 0, "heir-1")
	require.NotNil(t, err)
	assert.Equal(t, types.BelowMinimum, err.Code)

	// nothing moved, nothing marked
	assert.Equal(t, int64(0), env.ledger.balance("heir-1"))
	beneficiary, berr := env.svc.GetBeneficiary(ctx, "vault-1", 0)
	require.Nil(t, berr)
	assert.False(t, beneficiary.Claimed)
}

func TestClaimTransferFailureRollsBack(t *testing.T) {
	ctx := t.Context()
	env := newTestEnv(t)
	env.createVault(t, "vault-1", "owner-1", 1_000_000, false)

	require.Nil(t, env.svc.AddBeneficiary(ctx, AddBeneficiaryParams{
		VaultID:       "vault-1",
		Caller:        "owner-1",
		Index:         0,
		Recipient:     "heir-1",
		AllocationBps: 6_000,
	}))

	env.advancePastGraceEnd(t, "vault-1")
	_, terr := env.svc.Trigger(ctx, "vault-1", "anyone")
	require.Nil(t, terr)

	env.ledger.failTransfersTo("heir-1")
	_, err := env.svc.Claim(ctx, "vault-1", 0, "heir-1")
	require.NotNil(t, err)
	assert.Equal(t, types.TransferFailed, err.Code)

	// the failed claim left the vault intact and stays claimable
	vault, gerr := env.svc.GetVault(ctx, "vault-1", "owner-1")
	require.Nil(t, gerr)
	assert.Equal(t, uint64(1_000_000), vault.Balance)
	assert.Equal(t, int64(1_000_000), env.ledger.balance(types.VaultCustody("vault-1")))

	beneficiary, berr := env.svc.GetBeneficiary(ctx, "vault-1", 0)
	require.Nil(t, berr)
	assert.False(t, beneficiary.Claimed)
}

func TestAutoDistribute(t *testing.T) {
	ctx := t.Context()

	addTwoBeneficiaries := func(t *testing.T, env *testEnv) {
		t.Helper()
		require.Nil(t, env.svc.AddBeneficiary(ctx, AddBeneficiaryParams{
			VaultID:       "vault-1",
			Caller:        "owner-1",
			Index:         0,
			Recipient:     "heir-1",
			AllocationBps: 6_000,
		}))
		require.Nil(t, env.svc.AddBeneficiary(ctx, AddBeneficiaryParams{
			VaultID:       "vault-1",
			Caller:        "owner-1",
			Index:         1,
			Recipient:     "heir-2",
			AllocationBps: 4_000,
		}))
	}

	t.Run("pays all beneficiaries and finishes inherited", func(t *testing.T) {
		env := newTestEnv(t)
		env.createVault(t, "vault-1", "owner-1", 10_000_000, true)
		addTwoBeneficiaries(t, env)

		env.advancePastGraceEnd(t, "vault-1")
		result, err := env.svc.Trigger(ctx, "vault-1", "anyone")
		require.Nil(t, err)
		assert.Equal(t, types.StateInherited, result.State)
		assert.Empty(t, result.Failures)
		require.Len(t, result.Payouts, 2)

		// heir-1: gross 6,000,000 fee 60,000 net 5,940,000
		// heir-2 draws against the remaining 4,000,000:
		// gross 1,600,000 fee 16,000 net 1,584,000
		assert.Equal(t, uint64(5_940_000), result.Payouts[0].Net)
		assert.Equal(t, uint64(1_584_000), result.Payouts[1].Net)
		assert.Equal(t, int64(5_940_000), env.ledger.balance("heir-1"))
		assert.Equal(t, int64(1_584_000), env.ledger.balance("heir-2"))
		assert.Equal(t, int64(76_000), env.ledger.balance(testFeeSink))

		vault, gerr := env.svc.GetVault(ctx, "vault-1", "owner-1")
		require.Nil(t, gerr)
		assert.Equal(t, types.StateInherited, vault.State)
		assert.Equal(t, uint64(2_400_000), vault.Balance)
	})

	t.Run("one failed payout does not block the rest", func(t *testing.T) {
		env := newTestEnv(t)
		env.createVault(t, "vault-1", "owner-1", 10_000_000, true)
		addTwoBeneficiaries(t, env)

		env.advancePastGraceEnd(t, "vault-1")
		env.ledger.failTransfersTo("heir-1")

		result, err := env.svc.Trigger(ctx, "vault-1", "anyone")
		require.Nil(t, err)
		assert.Equal(t, types.StateInherited, result.State)

		require.Len(t, result.Failures, 1)
		assert.Equal(t, uint32(0), result.Failures[0].Index)
		assert.Equal(t, types.TransferFailed, result.Failures[0].Code)

		// heir-2 still drew against the full balance since heir-1's
		// gross never left the vault
		require.Len(t, result.Payouts, 1)
		assert.Equal(t, uint32(1), result.Payouts[0].Index)
		assert.Equal(t, uint64(3_960_000), result.Payouts[0].Net)
		assert.Equal(t, int64(3_960_000), env.ledger.balance("heir-2"))

		// the failed beneficiary can still claim individually
		beneficiary, berr := env.svc.GetBeneficiary(ctx, "vault-1", 0)
		require.Nil(t, berr)
		assert.False(t, beneficiary.Claimed)
	})
}
