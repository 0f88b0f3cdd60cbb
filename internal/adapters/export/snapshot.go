// Package export writes the final ratings and their history: CSV files for
// people and an optional relational sink for everything else.
package export

import (
	"fmt"

	"github.com/okian/foresight/internal/adapters/repository"
	"github.com/okian/foresight/internal/domain/model"
)

// DefaultTopN is the size of the top players view.
const DefaultTopN = 20

// Snapshot is the ranked state of a store at the end of a run.
type Snapshot struct {
	Teams      []repository.Entry
	Players    []repository.Entry
	TopPlayers []repository.Entry
}

// Take ranks every entity of store. Equal ratings keep first-reference
// order and still get distinct ranks.
func Take(store repository.Store, topN int) (Snapshot, error) {
	top, err := store.TopN(model.KindPlayer, topN)
	if err != nil {
		return Snapshot{}, fmt.Errorf("top %d players: %w", topN, err)
	}
	return Snapshot{
		Teams:      store.Ranked(model.KindTeam),
		Players:    store.Ranked(model.KindPlayer),
		TopPlayers: top,
	}, nil
}

// Find returns the ranked entry for id.
func Find(entries []repository.Entry, id string) (repository.Entry, bool) {
	for _, e := range entries {
		if e.ID == id {
			return e, true
		}
	}
	return repository.Entry{}, false
}
