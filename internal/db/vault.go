package db

import (
	"context"
	"errors"

	"github.com/legacylock-io/sbtc-legacy-vault/internal/db/model"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SaveNewVault persists a freshly created vault together with its
// proof-of-life record. The vault insert is the uniqueness gate; the
// proof-of-life insert shares the vault id as primary key.
func (db *Database) SaveNewVault(
	ctx context.Context, vault *model.VaultDocument, pol *model.ProofOfLifeDocument,
) error {
	_, err := db.collection(model.VaultCollection).InsertOne(ctx, vault)
	if err != nil {
		var writeErr mongo.WriteException
		if errors.As(err, &writeErr) {
			for _, e := range writeErr.WriteErrors {
				if mongo.IsDuplicateKeyError(e) {
					return &DuplicateKeyError{
						Key:     vault.ID,
						Message: "vault already exists",
					}
				}
			}
		}
		return err
	}

	_, err = db.collection(model.ProofOfLifeCollection).InsertOne(ctx, pol)
	if mongo.IsDuplicateKeyError(err) {
		// A stale proof-of-life without a vault record should not exist,
		// but treat it as the same uniqueness violation.
		return &DuplicateKeyError{
			Key:     vault.ID,
			Message: "proof of life already exists",
		}
	}
	return err
}

func (db *Database) GetVault(ctx context.Context, vaultID string) (*model.VaultDocument, error) {
	var vault model.VaultDocument
	err := db.collection(model.VaultCollection).
		FindOne(ctx, bson.M{"_id": vaultID}).Decode(&vault)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     vaultID,
				Message: "vault not found",
			}
		}
		return nil, err
	}
	return &vault, nil
}

// UpdateVaultState transitions the vault state only if the current state is
// one of the qualified previous states, so concurrent transitions on the
// same vault cannot double-apply.
func (db *Database) UpdateVaultState(
	ctx context.Context,
	vaultID string,
	qualifiedPreviousStates []types.VaultState,
	newState types.VaultState,
) error {
	qualifiedStateStrs := make([]string, len(qualifiedPreviousStates))
	for i, state := range qualifiedPreviousStates {
		qualifiedStateStrs[i] = state.String()
	}

	filter := bson.M{
		"_id":   vaultID,
		"state": bson.M{"$in": qualifiedStateStrs},
	}
	update := bson.M{
		"$set": bson.M{"state": newState.String()},
	}

	res := db.collection(model.VaultCollection).FindOneAndUpdate(ctx, filter, update)
	if res.Err() != nil {
		if errors.Is(res.Err(), mongo.ErrNoDocuments) {
			return &NotFoundError{
				Key:     vaultID,
				Message: "vault not found or current state is not qualified",
			}
		}
		return res.Err()
	}
	return nil
}

// AddToVaultBalance credits the vault balance after a ledger transfer into
// vault custody has completed.
func (db *Database) AddToVaultBalance(ctx context.Context, vaultID string, amount uint64) error {
	res := db.collection(model.VaultCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": vaultID},
		bson.M{"$inc": bson.M{"balance": int64(amount)}},
	)
	if res.Err() != nil {
		if errors.Is(res.Err(), mongo.ErrNoDocuments) {
			return &NotFoundError{
				Key:     vaultID,
				Message: "vault not found",
			}
		}
		return res.Err()
	}
	return nil
}

// SubtractFromVaultBalance debits the vault balance. The filter guards
// against underflow; a vault with a smaller balance is reported as not
// found and the caller maps that onto its own taxonomy.
func (db *Database) SubtractFromVaultBalance(ctx context.Context, vaultID string, amount uint64) error {
	filter := bson.M{
		"_id":     vaultID,
		"balance": bson.M{"$gte": amount},
	}
	res := db.collection(model.VaultCollection).FindOneAndUpdate(
		ctx,
		filter,
		bson.M{"$inc": bson.M{"balance": -int64(amount)}},
	)
	if res.Err() != nil {
		if errors.Is(res.Err(), mongo.ErrNoDocuments) {
			return &NotFoundError{
				Key:     vaultID,
				Message: "vault not found or balance insufficient",
			}
		}
		return res.Err()
	}
	return nil
}
