package knowledgeRepo

import (
	"context"

	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/database"
	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// KnowledgeRepository is the canonical store of scraped page chunks. The
// vector index is rebuilt from this collection when missing.
type KnowledgeRepository interface {
	Upsert(ctx context.Context, chunk models.ScrapedChunk) (string, error)
	ListAll(ctx context.Context) ([]models.ScrapedChunk, error)
	Count(ctx context.Context) (int64, error)
	PurgeByURL(ctx context.Context, url string) (int64, error)
}

type mongoKnowledgeRepo struct {
	coll *mongo.Collection
}

// NewMongoKnowledgeRepo returns a new KnowledgeRepository instance using MongoDB.
func NewMongoKnowledgeRepo() KnowledgeRepository {
	return &mongoKnowledgeRepo{
		coll: database.Database().Collection("scraped_content"),
	}
}
