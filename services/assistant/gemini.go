// File: services/assistant/gemini.go
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
)

// GeminiCompleter adapts a Gemini generative model to the Completer
// interface.
type GeminiCompleter struct {
	model *genai.GenerativeModel
}

// NewGeminiCompleter wraps the given client and model name.
func NewGeminiCompleter(client *genai.Client, modelName string) *GeminiCompleter {
	return &GeminiCompleter{model: client.GenerativeModel(modelName)}
}

// CompleteStream implements Completer.
func (g *GeminiCompleter) CompleteStream(ctx context.Context, prompt string, onFragment func(string)) (string, error) {
	iter := g.model.GenerateContentStream(ctx, genai.Text(prompt))

	var sb strings.Builder
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("gemini stream error: %w", err)
		}
		for _, cand := range resp.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if text, ok := part.(genai.Text); ok && len(text) > 0 {
					sb.WriteString(string(text))
					if onFragment != nil {
						onFragment(string(text))
					}
				}
			}
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return sb.String(), nil
}
