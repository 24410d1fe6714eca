package db

import (
	"context"
	"errors"

	"github.com/legacylock-io/sbtc-legacy-vault/internal/db/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InitAdminState seeds the singleton admin document on first start. An
// existing document is left untouched so runtime fee changes survive
// restarts.
func (db *Database) InitAdminState(ctx context.Context, adminID string, protocolFeeBps uint32) error {
	filter := bson.M{"_id": model.AdminStateID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"admin_id":         adminID,
			"protocol_fee_bps": protocolFeeBps,
			"paused_vaults":    []string{},
		},
	}
	opts := options.Update().SetUpsert(true)
	_, err := db.collection(model.AdminStateCollection).UpdateOne(ctx, filter, update, opts)
	return err
}

func (db *Database) GetAdminState(ctx context.Context) (*model.AdminStateDocument, error) {
	var state model.AdminStateDocument
	err := db.collection(model.AdminStateCollection).
		FindOne(ctx, bson.M{"_id": model.AdminStateID}).Decode(&state)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     model.AdminStateID,
				Message: "admin state not initialized",
			}
		}
		return nil, err
	}
	return &state, nil
}

func (db *Database) SetProtocolFee(ctx context.Context, bps uint32) error {
	update := bson.M{"$set": bson.M{"protocol_fee_bps": bps}}
	res := db.collection(model.AdminStateCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": model.AdminStateID}, update)
	if res.Err() != nil {
		if errors.Is(res.Err(), mongo.ErrNoDocuments) {
			return &NotFoundError{
				Key:     model.AdminStateID,
				Message: "admin state not initialized",
			}
		}
		return res.Err()
	}
	return nil
}

func (db *Database) AddPausedVault(ctx context.Context, vaultID string) error {
	update := bson.M{"$addToSet": bson.M{"paused_vaults": vaultID}}
	_, err := db.collection(model.AdminStateCollection).
		UpdateOne(ctx, bson.M{"_id": model.AdminStateID}, update)
	return err
}

func (db *Database) RemovePausedVault(ctx context.Context, vaultID string) error {
	update := bson.M{"$pull": bson.M{"paused_vaults": vaultID}}
	_, err := db.collection(model.AdminStateCollection).
		UpdateOne(ctx, bson.M{"_id": model.AdminStateID}, update)
	return err
}

// SaveAccessGrant upserts a professional access grant keyed by
// (vault id, grantee); re-granting overwrites the level.
func (db *Database) SaveAccessGrant(ctx context.Context, grant *model.AccessGrantDocument) error {
	filter := bson.M{"_id": grant.ID}
	update := bson.M{"$set": grant}
	opts := options.Update().SetUpsert(true)
	_, err := db.collection(model.AccessGrantCollection).UpdateOne(ctx, filter, update, opts)
	return err
}

func (db *Database) GetAccessGrant(
	ctx context.Context, vaultID, grantee string,
) (*model.AccessGrantDocument, error) {
	var grant model.AccessGrantDocument
	err := db.collection(model.AccessGrantCollection).
		FindOne(ctx, bson.M{"_id": model.AccessGrantID(vaultID, grantee)}).Decode(&grant)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     model.AccessGrantID(vaultID, grantee),
				Message: "access grant not found",
			}
		}
		return nil, err
	}
	return &grant, nil
}
