package db

import (
	"context"
	"errors"

	"github.com/legacylock-io/sbtc-legacy-vault/internal/db/model"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *Database) GetProofOfLife(ctx context.Context, vaultID string) (*model.ProofOfLifeDocument, error) {
	var pol model.ProofOfLifeDocument
	err := db.collection(model.ProofOfLifeCollection).
		FindOne(ctx, bson.M{"_id": vaultID}).Decode(&pol)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     vaultID,
				Message: "proof of life not found",
			}
		}
		return nil, err
	}
	return &pol, nil
}

// ResetProofOfLife records an owner check-in: last check-in moves to the
// current tick and both derived ticks are recomputed by the caller.
func (db *Database) ResetProofOfLife(
	ctx context.Context, vaultID string, lastCheckIn, deadline, graceEnd uint64,
) error {
	update := bson.M{
		"$set": bson.M{
			"last_check_in": lastCheckIn,
			"deadline":      deadline,
			"grace_end":     graceEnd,
			"status":        types.PolActive.String(),
		},
	}
	res := db.collection(model.ProofOfLifeCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": vaultID}, update)
	if res.Err() != nil {
		if errors.Is(res.Err(), mongo.ErrNoDocuments) {
			return &NotFoundError{
				Key:     vaultID,
				Message: "proof of life not found",
			}
		}
		return res.Err()
	}
	return nil
}

// UpdateProofOfLifeStatus advances the status mirror only from a qualified
// previous status, mirroring the vault state transition discipline.
func (db *Database) UpdateProofOfLifeStatus(
	ctx context.Context,
	vaultID string,
	qualifiedPreviousStatuses []types.PolStatus,
	newStatus types.PolStatus,
) error {
	qualifiedStatusStrs := make([]string, len(qualifiedPreviousStatuses))
	for i, status := range qualifiedPreviousStatuses {
		qualifiedStatusStrs[i] = status.String()
	}

	filter := bson.M{
		"_id":    vaultID,
		"status": bson.M{"$in": qualifiedStatusStrs},
	}
	update := bson.M{"$set": bson.M{"status": newStatus.String()}}

	res := db.collection(model.ProofOfLifeCollection).FindOneAndUpdate(ctx, filter, update)
	if res.Err() != nil {
		if errors.Is(res.Err(), mongo.ErrNoDocuments) {
			return &NotFoundError{
				Key:     vaultID,
				Message: "proof of life not found or status is not qualified",
			}
		}
		return res.Err()
	}
	return nil
}

// FindApproachingDeadline returns proof-of-life records still ACTIVE whose
// deadline falls within the warning window of the current tip.
func (db *Database) FindApproachingDeadline(
	ctx context.Context, tipHeight, warningWindow, limit uint64,
) ([]model.ProofOfLifeDocument, error) {
	filter := bson.M{
		"status":   types.PolActive.String(),
		"deadline": bson.M{"$gt": tipHeight, "$lte": tipHeight + warningWindow},
	}
	return db.findProofOfLife(ctx, filter, limit)
}

// FindPastDeadline returns records whose deadline has elapsed but whose
// grace period has not.
func (db *Database) FindPastDeadline(
	ctx context.Context, tipHeight, limit uint64,
) ([]model.ProofOfLifeDocument, error) {
	filter := bson.M{
		"status": bson.M{"$in": []string{
			types.PolActive.String(),
			types.PolWarning.String(),
		}},
		"deadline":  bson.M{"$lte": tipHeight},
		"grace_end": bson.M{"$gt": tipHeight},
	}
	return db.findProofOfLife(ctx, filter, limit)
}

// FindPastGraceEnd returns records whose grace period has fully elapsed.
func (db *Database) FindPastGraceEnd(
	ctx context.Context, tipHeight, limit uint64,
) ([]model.ProofOfLifeDocument, error) {
	filter := bson.M{
		"status": bson.M{"$in": []string{
			types.PolActive.String(),
			types.PolWarning.String(),
			types.PolGracePeriod.String(),
		}},
		"grace_end": bson.M{"$lte": tipHeight},
	}
	return db.findProofOfLife(ctx, filter, limit)
}

func (db *Database) findProofOfLife(
	ctx context.Context, filter bson.M, limit uint64,
) ([]model.ProofOfLifeDocument, error) {
	opts := options.Find().SetLimit(int64(limit))
	cursor, err := db.collection(model.ProofOfLifeCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []model.ProofOfLifeDocument
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
