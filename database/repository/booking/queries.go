package bookingRepo

import (
	"fmt"
	"time"

	"campusbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// slotLookup joins each booking with its slot document into "slotDoc".
func slotLookup() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         "slots",
			"localField":   "slotId",
			"foreignField": "id",
			"as":           "slotDoc",
		}}},
		{{Key: "$unwind", Value: "$slotDoc"}},
	}
}

// FindApprovedWithSlots returns the student's approved bookings joined with
// their slot windows.
func (r *MongoBookingRepo) FindApprovedWithSlots(studentID string) ([]models.BookingWithSlot, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"studentId": studentID,
			"status":    models.BookingStatusApproved,
		}}},
	}
	pipeline = append(pipeline, slotLookup()...)

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate approved bookings for student %s: %w", studentID, err)
	}
	defer cursor.Close(ctx)

	var results []models.BookingWithSlot
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode aggregation results: %w", err)
	}
	return results, nil
}

// FindApprovedInWindow returns approved bookings whose slot starts in
// [from, to), joined with their slots. The reminder scheduler drives both
// of its passes off this query.
func (r *MongoBookingRepo) FindApprovedInWindow(from, to time.Time) ([]models.BookingWithSlot, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.BookingStatusApproved}}},
	}
	pipeline = append(pipeline, slotLookup()...)
	pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{
		"slotDoc.startTime": bson.M{"$gte": from, "$lt": to},
	}}})

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate approved bookings in window: %w", err)
	}
	defer cursor.Close(ctx)

	var results []models.BookingWithSlot
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode aggregation results: %w", err)
	}
	return results, nil
}

// RecentTerminalOutcomes returns the student's latest bookings that ended
// with a terminal attendance outcome: completed or no-show status, or an
// attended/no-show attendance mark.
func (r *MongoBookingRepo) RecentTerminalOutcomes(studentID string, limit int64) ([]models.Booking, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"studentId": studentID,
			"$or": bson.A{
				bson.M{"status": bson.M{"$in": bson.A{models.BookingStatusCompleted, models.BookingStatusNoShow}}},
				bson.M{"attendance.status": bson.M{"$in": bson.A{models.AttendanceAttended, models.AttendanceNoShow}}},
			},
		}}},
		{{Key: "$sort", Value: bson.M{"createdAt": -1}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$project", Value: bson.M{"status": 1, "attendance.status": 1}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate terminal outcomes for student %s: %w", studentID, err)
	}
	defer cursor.Close(ctx)

	var results []models.Booking
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode terminal outcomes: %w", err)
	}
	return results, nil
}
