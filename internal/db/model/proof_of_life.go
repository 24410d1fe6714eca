package model

import (
	"github.com/legacylock-io/sbtc-legacy-vault/internal/types"
)

const ProofOfLifeCollection = "proof_of_life"

// ProofOfLifeDocument tracks owner check-ins for one vault (1:1). Deadline
// and grace end are derived from the last check-in and stored so expiry
// scans can filter on them directly.
type ProofOfLifeDocument struct {
	VaultID     string          `bson:"_id"` // Primary key
	LastCheckIn uint64          `bson:"last_check_in"`
	Deadline    uint64          `bson:"deadline"`  // last_check_in + delay
	GraceEnd    uint64          `bson:"grace_end"` // deadline + grace
	Status      types.PolStatus `bson:"status"`
}

func NewProofOfLifeDocument(vaultID string, now, delay, grace uint64) *ProofOfLifeDocument {
	deadline := now + delay
	return &ProofOfLifeDocument{
		VaultID:     vaultID,
		LastCheckIn: now,
		Deadline:    deadline,
		GraceEnd:    deadline + grace,
		Status:      types.PolActive,
	}
}
