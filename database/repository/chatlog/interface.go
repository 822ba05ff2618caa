package chatlogRepo

import (
	"context"

	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/database"
	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ChatLogRepository persists per-turn transcripts. Writes are best-effort;
// the assistant never blocks a turn on them.
type ChatLogRepository interface {
	Append(ctx context.Context, entry models.ChatLogEntry) error
	GetBySessionID(ctx context.Context, sessionID string, limit int64) ([]models.ChatLogEntry, error)
}

type mongoChatLogRepo struct {
	coll *mongo.Collection
}

// NewMongoChatLogRepo returns a new ChatLogRepository instance using MongoDB.
func NewMongoChatLogRepo() ChatLogRepository {
	return &mongoChatLogRepo{
		coll: database.Database().Collection("chat_history"),
	}
}
