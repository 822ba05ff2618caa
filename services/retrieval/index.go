// File: services/retrieval/index.go
package retrieval

import (
	"fmt"

	"github.com/philippgille/chromem-go"
)

// collectionName is the single knowledge collection the assistant searches.
const collectionName = "company_knowledge"

// OpenIndex opens (or creates) the persistent vector index at path and
// returns the knowledge collection bound to the given embedding function.
func OpenIndex(path string, embed chromem.EmbeddingFunc) (*chromem.Collection, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("open vector index: %w", err)
	}
	coll, err := db.GetOrCreateCollection(collectionName, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("open knowledge collection: %w", err)
	}
	return coll, nil
}
