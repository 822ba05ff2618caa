package chatlogRepo

import (
	"context"
	"time"

	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Append inserts one transcript row.
func (r *mongoChatLogRepo) Append(ctx context.Context, entry models.ChatLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	entry.CreatedAt = time.Now()

	_, err := r.coll.InsertOne(ctx, entry)
	return err
}

// GetBySessionID returns the newest transcript rows for a session.
func (r *mongoChatLogRepo) GetBySessionID(ctx context.Context, sessionID string, limit int64) ([]models.ChatLogEntry, error) {
	opts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, bson.M{"sessionId": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.ChatLogEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
