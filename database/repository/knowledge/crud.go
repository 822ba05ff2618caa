package knowledgeRepo

import (
	"context"
	"time"

	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Upsert inserts a chunk, keyed by url+content so re-scraping the same page
// never duplicates rows. Returns the chunk ID.
func (r *mongoKnowledgeRepo) Upsert(ctx context.Context, chunk models.ScrapedChunk) (string, error) {
	if chunk.ID == "" {
		chunk.ID = uuid.New().String()
	}
	chunk.ScrapedAt = time.Now()

	filter := bson.M{"url": chunk.URL, "content": chunk.Content}
	update := bson.M{
		"$setOnInsert": bson.M{
			"id":        chunk.ID,
			"url":       chunk.URL,
			"title":     chunk.Title,
			"content":   chunk.Content,
			"wordCount": chunk.WordCount,
			"scrapedAt": chunk.ScrapedAt,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.coll.UpdateOne(ctx, filter, update, opts); err != nil {
		return "", err
	}
	return chunk.ID, nil
}

// ListAll returns every stored chunk, oldest first.
func (r *mongoKnowledgeRepo) ListAll(ctx context.Context) ([]models.ScrapedChunk, error) {
	opts := options.Find().SetSort(bson.M{"scrapedAt": 1})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var chunks []models.ScrapedChunk
	if err := cursor.All(ctx, &chunks); err != nil {
		return nil, err
	}
	return chunks, nil
}

// Count returns the number of stored chunks.
func (r *mongoKnowledgeRepo) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}

// PurgeByURL removes every chunk belonging to a URL, returning the count.
func (r *mongoKnowledgeRepo) PurgeByURL(ctx context.Context, url string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"url": url})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
