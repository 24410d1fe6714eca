package db

import (
	"context"
	"errors"
	"time"

	"github.com/legacylock-io/sbtc-legacy-vault/internal/db/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IncrementVaultStats applies deltas to the aggregate counters alongside
// the owning operation. Negative lockedDelta is used by withdraw and claim.
func (db *Database) IncrementVaultStats(
	ctx context.Context, vaultsDelta, lockedDelta int64,
) error {
	filter := bson.M{"_id": model.VaultStatsID}
	update := bson.M{
		"$inc": bson.M{
			"total_vaults": vaultsDelta,
			"total_locked": lockedDelta,
		},
		"$set": bson.M{
			"last_updated": time.Now().Unix(),
		},
	}
	opts := options.Update().SetUpsert(true)

	_, err := db.collection(model.VaultStatsCollection).UpdateOne(ctx, filter, update, opts)
	return err
}

// GetVaultStats returns the aggregate counters; a missing document reads
// as all-zero totals.
func (db *Database) GetVaultStats(ctx context.Context) (*model.VaultStatsDocument, error) {
	var stats model.VaultStatsDocument
	err := db.collection(model.VaultStatsCollection).
		FindOne(ctx, bson.M{"_id": model.VaultStatsID}).Decode(&stats)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &model.VaultStatsDocument{ID: model.VaultStatsID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
