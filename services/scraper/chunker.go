// File: services/scraper/chunker.go
package scraper

import "strings"

// chunkSize is the target chunk length in runes. Chunks break on the last
// whitespace before the limit so words stay intact.
const chunkSize = 1000

// ChunkText splits page text into embedding-sized pieces.
func ChunkText(text string) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}

	var chunks []string
	for len(runes) > 0 {
		if len(runes) <= chunkSize {
			chunks = append(chunks, strings.TrimSpace(string(runes)))
			break
		}

		cut := chunkSize
		for i := chunkSize; i > chunkSize/2; i-- {
			if isSpace(runes[i]) {
				cut = i
				break
			}
		}

		chunk := strings.TrimSpace(string(runes[:cut]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		runes = runes[cut:]
	}
	return chunks
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}
