package appointmentRepo

import (
	"context"

	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/database"
	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// AppointmentRepository persists booking records.
type AppointmentRepository interface {
	Create(ctx context.Context, appt models.Appointment) (string, error)
	UpdateTiming(ctx context.Context, email, oldTiming, newTiming string) error
	GetByEmail(ctx context.Context, email string) ([]models.Appointment, error)
	DeleteByID(ctx context.Context, id string) error
}

type mongoAppointmentRepo struct {
	coll *mongo.Collection
}

// NewMongoAppointmentRepo returns a new AppointmentRepository instance using MongoDB.
func NewMongoAppointmentRepo() AppointmentRepository {
	return &mongoAppointmentRepo{
		coll: database.Database().Collection("appointments"),
	}
}
