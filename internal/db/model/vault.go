package model

import (
	"github.com/legacylock-io/sbtc-legacy-vault/internal/types"
)

const VaultCollection = "vaults"

// VaultDocument is the persisted vault aggregate root. The id is caller
// supplied and globally unique; collisions are rejected on insert.
type VaultDocument struct {
	ID               string           `bson:"_id"`
	Owner            string           `bson:"owner"`
	Name             string           `bson:"name"`
	PrivacyTier      uint8            `bson:"privacy_tier"`
	InheritanceDelay uint64           `bson:"inheritance_delay"` // ticks
	GracePeriod      uint64           `bson:"grace_period"`      // ticks
	State            types.VaultState `bson:"state"`
	Balance          uint64           `bson:"balance"` // sBTC, smallest unit
	Locked           bool             `bson:"locked"`
	AutoDistribute   bool             `bson:"auto_distribute"`
	MinInheritance   uint64           `bson:"min_inheritance"`
	CreatedHeight    uint64           `bson:"created_height"`
}
