// File: services/retrieval/embedder.go
package retrieval

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/generative-ai-go/genai"
	"github.com/philippgille/chromem-go"
	"go.uber.org/zap"
)

// embedCacheTTL bounds how long a query embedding is reused.
const embedCacheTTL = 24 * time.Hour

// NewGeminiEmbedding returns an embedding function backed by the Gemini
// embedding model, with a Redis cache in front so repeated queries skip the
// API round trip. A nil cache disables caching.
func NewGeminiEmbedding(client *genai.Client, modelName string, cache *redis.Client, logger *zap.Logger) chromem.EmbeddingFunc {
	em := client.EmbeddingModel(modelName)

	return func(ctx context.Context, text string) ([]float32, error) {
		key := embedCacheKey(text)

		if cache != nil {
			if cached, err := cache.Get(ctx, key).Bytes(); err == nil {
				var values []float32
				if err := json.Unmarshal(cached, &values); err == nil && len(values) > 0 {
					return values, nil
				}
			}
		}

		res, err := em.EmbedContent(ctx, genai.Text(text))
		if err != nil {
			return nil, fmt.Errorf("embed content: %w", err)
		}
		if res.Embedding == nil || len(res.Embedding.Values) == 0 {
			return nil, errors.New("embedding model returned no values")
		}
		values := res.Embedding.Values

		if cache != nil {
			if raw, err := json.Marshal(values); err == nil {
				if err := cache.Set(ctx, key, raw, embedCacheTTL).Err(); err != nil {
					logger.Debug("embedding cache write failed", zap.Error(err))
				}
			}
		}
		return values, nil
	}
}

func embedCacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "embed:" + hex.EncodeToString(sum[:])
}
