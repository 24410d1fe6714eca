package model

import (
	"context"
	"fmt"
	"time"

	"github.com/legacylock-io/sbtc-legacy-vault/internal/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type index struct {
	Keys   bson.D
	Unique bool
}

var collections = map[string][]index{
	VaultCollection: {
		{Keys: bson.D{{Key: "owner", Value: 1}}},
		{Keys: bson.D{{Key: "state", Value: 1}}},
	},
	ProofOfLifeCollection: {
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "deadline", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "grace_end", Value: 1}}},
	},
	BeneficiaryCollection: {
		{Keys: bson.D{{Key: "vault_id", Value: 1}, {Key: "index", Value: 1}}, Unique: true},
	},
	AdminStateCollection:  nil,
	AccessGrantCollection: {{Keys: bson.D{{Key: "vault_id", Value: 1}}}},
	VaultStatsCollection:  nil,
}

// Setup creates the collections and indexes used by the vault core.
// It is idempotent and safe to run on every start.
func Setup(ctx context.Context, cfg *config.DbConfig) error {
	credential := options.Credential{
		Username: cfg.Username,
		Password: cfg.Password,
	}
	clientOps := options.Client().ApplyURI(cfg.Address).SetAuth(credential)
	client, err := mongo.Connect(ctx, clientOps)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	database := client.Database(cfg.DbName)

	for name, idxs := range collections {
		// already-exists errors are ignored, setup is idempotent
		_ = database.CreateCollection(ctx, name)

		for _, idx := range idxs {
			indexModel := mongo.IndexModel{
				Keys:    idx.Keys,
				Options: options.Index().SetUnique(idx.Unique),
			}
			if _, err := database.Collection(name).Indexes().CreateOne(ctx, indexModel); err != nil {
				return fmt.Errorf("failed to create index on %s: %w", name, err)
			}
		}
	}

	return client.Disconnect(ctx)
}
