package testutil

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/legacylock-io/sbtc-legacy-vault/internal/db/model"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/types"
)

// RandomAlphaNum generates a random alphanumeric string of length n. It
// takes no testing.T so TestMain setup code can use it too.
func RandomAlphaNum(n int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))] //nolint:gosec
	}
	return string(b)
}

// RandomVaultID generates a vault id in the shape callers use in practice.
func RandomVaultID(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("vault-%s", gofakeit.UUID())
}

// RandomIdentity generates an opaque principal identity.
func RandomIdentity(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("ST%s", gofakeit.LetterN(20))
}

// RandomVaultDocument generates an ACTIVE vault with sane config values.
func RandomVaultDocument(t *testing.T) *model.VaultDocument {
	t.Helper()
	return &model.VaultDocument{
		ID:               RandomVaultID(t),
		Owner:            RandomIdentity(t),
		Name:             gofakeit.Sentence(3),
		PrivacyTier:      uint8(gofakeit.Number(1, 4)),
		InheritanceDelay: uint64(gofakeit.Number(100, 10_000)),
		GracePeriod:      uint64(gofakeit.Number(10, 1_000)),
		State:            types.StateActive,
		Balance:          uint64(gofakeit.Number(0, 100_000_000)),
		CreatedHeight:    uint64(gofakeit.Number(1, 1_000_000)),
	}
}

// RandomProofOfLifeDocument generates the proof-of-life record matching a vault.
func RandomProofOfLifeDocument(t *testing.T, vault *model.VaultDocument) *model.ProofOfLifeDocument {
	t.Helper()
	return model.NewProofOfLifeDocument(
		vault.ID, vault.CreatedHeight, vault.InheritanceDelay, vault.GracePeriod,
	)
}

// RandomBeneficiaryDocument generates an unclaimed beneficiary slot.
func RandomBeneficiaryDocument(t *testing.T, vaultID string, index uint32) *model.BeneficiaryDocument {
	t.Helper()
	return model.NewBeneficiaryDocument(
		vaultID,
		index,
		RandomIdentity(t),
		uint32(gofakeit.Number(1, 5_000)),
		uint64(gofakeit.Number(0, 1_000)),
		[]byte(gofakeit.LetterN(32)),
	)
}
