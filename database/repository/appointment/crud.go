package appointmentRepo

import (
	"context"
	"errors"
	"time"

	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// Create inserts a new appointment record and returns its ID.
func (r *mongoAppointmentRepo) Create(ctx context.Context, appt models.Appointment) (string, error) {
	if appt.ID == "" {
		appt.ID = uuid.New().String()
	}
	if appt.Status == "" {
		appt.Status = "confirmed"
	}
	appt.CreatedAt = time.Now()
	appt.UpdatedAt = time.Now()

	if _, err := r.coll.InsertOne(ctx, appt); err != nil {
		return "", err
	}
	return appt.ID, nil
}

// UpdateTiming reschedules the most recent appointment matching email and the
// old timing. When oldTiming is empty the match falls back to email alone.
func (r *mongoAppointmentRepo) UpdateTiming(ctx context.Context, email, oldTiming, newTiming string) error {
	filter := bson.M{"email": email}
	if oldTiming != "" {
		filter["timing"] = oldTiming
	}
	update := bson.M{"$set": bson.M{
		"timing":    newTiming,
		"status":    "rescheduled",
		"updatedAt": time.Now(),
	}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errors.New("appointment not found")
	}
	return nil
}

// GetByEmail fetches all appointments booked under the given email.
func (r *mongoAppointmentRepo) GetByEmail(ctx context.Context, email string) ([]models.Appointment, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"email": email})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, err
	}
	return appts, nil
}

// DeleteByID removes an appointment record by ID.
func (r *mongoAppointmentRepo) DeleteByID(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return errors.New("appointment not found")
	}
	return nil
}
