package slotRepo

import (
	"fmt"
	"time"

	"campusbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReserveSeat takes one seat with a single conditional update. The filter
// only matches while bookedCount < capacity and the slot is active, so
// concurrent reservations of the last seat resolve to exactly one winner.
func (r *MongoSlotRepo) ReserveSeat(id string) (*models.Slot, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{
		"id":     id,
		"status": models.SlotStatusActive,
		"$expr":  bson.M{"$lt": bson.A{"$bookedCount", "$capacity"}},
	}
	newCount := bson.D{{Key: "$add", Value: bson.A{"$bookedCount", 1}}}
	update := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "bookedCount", Value: newCount},
			{Key: "isAvailable", Value: bson.D{{Key: "$and", Value: bson.A{
				bson.D{{Key: "$lt", Value: bson.A{newCount, "$capacity"}}},
				bson.D{{Key: "$eq", Value: bson.A{"$status", models.SlotStatusActive}}},
			}}}},
			{Key: "updatedAt", Value: "$$NOW"},
		}}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var slot models.Slot
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&slot); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrSeatUnavailable
		}
		return nil, fmt.Errorf("failed to reserve seat on slot %s: %w", id, err)
	}
	return &slot, nil
}

// ReleaseSeat frees one seat, clamping bookedCount at zero.
func (r *MongoSlotRepo) ReleaseSeat(id string) (*models.Slot, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	newCount := bson.D{{Key: "$max", Value: bson.A{
		0,
		bson.D{{Key: "$subtract", Value: bson.A{"$bookedCount", 1}}},
	}}}
	update := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "bookedCount", Value: newCount},
			{Key: "isAvailable", Value: bson.D{{Key: "$and", Value: bson.A{
				bson.D{{Key: "$lt", Value: bson.A{newCount, "$capacity"}}},
				bson.D{{Key: "$eq", Value: bson.A{"$status", models.SlotStatusActive}}},
			}}}},
			{Key: "updatedAt", Value: "$$NOW"},
		}}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var slot models.Slot
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, update, opts).Decode(&slot); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to release seat on slot %s: %w", id, err)
	}
	return &slot, nil
}

// CloseOut finalizes a slot: status set, counter reset to zero in one
// write rather than decremented per booking.
func (r *MongoSlotRepo) CloseOut(id, status string) (*models.Slot, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"status":      status,
		"bookedCount": 0,
		"isAvailable": false,
		"updatedAt":   time.Now(),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var slot models.Slot
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, update, opts).Decode(&slot); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to close out slot %s: %w", id, err)
	}
	return &slot, nil
}
