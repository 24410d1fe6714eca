package db

import (
	"context"
	"errors"

	"github.com/legacylock-io/sbtc-legacy-vault/internal/db/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *Database) SaveNewBeneficiary(
	ctx context.Context, beneficiary *model.BeneficiaryDocument,
) error {
	_, err := db.collection(model.BeneficiaryCollection).InsertOne(ctx, beneficiary)
	if err != nil {
		var writeErr mongo.WriteException
		if errors.As(err, &writeErr) {
			for _, e := range writeErr.WriteErrors {
				if mongo.IsDuplicateKeyError(e) {
					return &DuplicateKeyError{
						Key:     beneficiary.ID,
						Message: "beneficiary index already exists",
					}
				}
			}
		}
		return err
	}
	return nil
}

func (db *Database) GetBeneficiary(
	ctx context.Context, vaultID string, index uint32,
) (*model.BeneficiaryDocument, error) {
	var beneficiary model.BeneficiaryDocument
	err := db.collection(model.BeneficiaryCollection).
		FindOne(ctx, bson.M{"_id": model.BeneficiaryID(vaultID, index)}).
		Decode(&beneficiary)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     model.BeneficiaryID(vaultID, index),
				Message: "beneficiary not found",
			}
		}
		return nil, err
	}
	return &beneficiary, nil
}

// GetBeneficiariesByVault returns all beneficiaries of a vault in index
// order. Beneficiary counts are expected to stay small (tens), so a full
// read per operation is acceptable.
func (db *Database) GetBeneficiariesByVault(
	ctx context.Context, vaultID string,
) ([]model.BeneficiaryDocument, error) {
	opts := options.Find().SetSort(bson.M{"index": 1})
	cursor, err := db.collection(model.BeneficiaryCollection).
		Find(ctx, bson.M{"vault_id": vaultID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var beneficiaries []model.BeneficiaryDocument
	if err = cursor.All(ctx, &beneficiaries); err != nil {
		return nil, err
	}
	return beneficiaries, nil
}

// MarkBeneficiaryClaimed flips the claimed flag and records the paid-out
// net amount. The claimed=false filter makes the flip race-safe: the losing
// writer of a double claim sees not-found.
func (db *Database) MarkBeneficiaryClaimed(
	ctx context.Context, vaultID string, index uint32, claimedAmount uint64,
) error {
	filter := bson.M{
		"_id":     model.BeneficiaryID(vaultID, index),
		"claimed": false,
	}
	update := bson.M{
		"$set": bson.M{
			"claimed":        true,
			"claimed_amount": claimedAmount,
		},
	}

	res := db.collection(model.BeneficiaryCollection).FindOneAndUpdate(ctx, filter, update)
	if res.Err() != nil {
		if errors.Is(res.Err(), mongo.ErrNoDocuments) {
			return &NotFoundError{
				Key:     model.BeneficiaryID(vaultID, index),
				Message: "beneficiary not found or already claimed",
			}
		}
		return res.Err()
	}
	return nil
}

// UnmarkBeneficiaryClaimed reverses a claim mark when the surrounding
// operation had to be compensated.
func (db *Database) UnmarkBeneficiaryClaimed(
	ctx context.Context, vaultID string, index uint32,
) error {
	update := bson.M{
		"$set": bson.M{
			"claimed":        false,
			"claimed_amount": uint64(0),
		},
	}
	res := db.collection(model.BeneficiaryCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": model.BeneficiaryID(vaultID, index)}, update)
	if res.Err() != nil && !errors.Is(res.Err(), mongo.ErrNoDocuments) {
		return res.Err()
	}
	return nil
}
