// File: services/retrieval/retriever.go
package retrieval

import (
	"context"
	"fmt"

	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/models"

	"github.com/philippgille/chromem-go"
	"go.uber.org/zap"
)

const (
	// defaultTopK is how many chunks are considered per query.
	defaultTopK = 5
	// minSimilarity filters out chunks too far from the query to be useful
	// context.
	minSimilarity = 0.5
)

// DefaultRetriever searches the persistent vector index for company content
// relevant to a user question.
type DefaultRetriever struct {
	collection *chromem.Collection
	topK       int
	logger     *zap.Logger
}

// NewRetriever builds a retriever over the given knowledge collection.
func NewRetriever(collection *chromem.Collection, logger *zap.Logger) *DefaultRetriever {
	return &DefaultRetriever{
		collection: collection,
		topK:       defaultTopK,
		logger:     logger,
	}
}

// Search implements assistant.Retriever. An empty index yields an empty
// result, not an error.
func (r *DefaultRetriever) Search(ctx context.Context, query string) ([]models.RetrievedDocument, error) {
	count := r.collection.Count()
	if count == 0 {
		r.logger.Debug("knowledge index empty, skipping search")
		return nil, nil
	}

	n := r.topK
	if n > count {
		n = count
	}

	results, err := r.collection.Query(ctx, query, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query knowledge index: %w", err)
	}

	docs := make([]models.RetrievedDocument, 0, len(results))
	for _, res := range results {
		if res.Similarity < minSimilarity {
			continue
		}
		docs = append(docs, models.RetrievedDocument{
			URL:     res.Metadata["url"],
			Title:   res.Metadata["title"],
			Content: res.Content,
		})
	}

	r.logger.Debug("knowledge search complete",
		zap.Int("candidates", len(results)),
		zap.Int("kept", len(docs)))
	return docs, nil
}
