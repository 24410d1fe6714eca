package model

import "fmt"

const BeneficiaryCollection = "beneficiaries"

// BeneficiaryDocument is one allocation slot of a vault, keyed by
// (vault id, sequential index). Metadata is an owner-supplied encrypted
// blob the core never interprets.
type BeneficiaryDocument struct {
	ID            string `bson:"_id"` // "<vault_id>/<index>"
	VaultID       string `bson:"vault_id"`
	Index         uint32 `bson:"index"`
	Recipient     string `bson:"recipient"`
	AllocationBps uint32 `bson:"allocation_bps"`
	MinAmount     uint64 `bson:"min_amount"`
	Metadata      []byte `bson:"metadata,omitempty"`
	Claimed       bool   `bson:"claimed"`
	ClaimedAmount uint64 `bson:"claimed_amount"`
}

func BeneficiaryID(vaultID string, index uint32) string {
	return fmt.Sprintf("%s/%d", vaultID, index)
}

func NewBeneficiaryDocument(
	vaultID string, index uint32, recipient string,
	allocationBps uint32, minAmount uint64, metadata []byte,
) *BeneficiaryDocument {
	return &BeneficiaryDocument{
		ID:            BeneficiaryID(vaultID, index),
		VaultID:       vaultID,
		Index:         index,
		Recipient:     recipient,
		AllocationBps: allocationBps,
		MinAmount:     minAmount,
		Metadata:      metadata,
	}
}
