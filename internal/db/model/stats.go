package model

const VaultStatsCollection = "vault_stats"

// VaultStatsDocument holds the process-wide aggregate counters, updated
// transactionally alongside the owning operation.
type VaultStatsDocument struct {
	ID          string `bson:"_id"`          // Always "vault_stats"
	TotalVaults uint64 `bson:"total_vaults"` // Vaults ever created
	TotalLocked uint64 `bson:"total_locked"` // Sum of vault balances in smallest unit
	LastUpdated int64  `bson:"last_updated"` // Unix timestamp of last update
}

const VaultStatsID = "vault_stats"
