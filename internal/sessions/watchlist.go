package sessions

import (
	"sync"

	"github.com/cinematch/backend/pkg/common"
)

// WatchlistStore keeps per-session watchlists in memory. Entries are
// whole recommendation items so the frontend can render the list
// without refetching. All methods are safe for concurrent use.
type WatchlistStore struct {
	mu    sync.Mutex
	lists map[string][]common.RecommendationItem
}

// NewWatchlistStore creates an empty watchlist store.
func NewWatchlistStore() *WatchlistStore {
	return &WatchlistStore{lists: make(map[string][]common.RecommendationItem)}
}

// Get returns a copy of the session's watchlist. Unknown sessions get
// an empty list.
func (w *WatchlistStore) Get(sessionID string) []common.RecommendationItem {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]common.RecommendationItem{}, w.lists[sessionID]...)
}

// Add appends movie to the session's watchlist unless a movie with the
// same TMDB id is already on it, and returns the list size.
func (w *WatchlistStore) Add(sessionID string, movie common.RecommendationItem) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, m := range w.lists[sessionID] {
		if m.TMDBID == movie.TMDBID {
			return len(w.lists[sessionID])
		}
	}
	w.lists[sessionID] = append(w.lists[sessionID], movie)
	return len(w.lists[sessionID])
}

// Remove drops the movie with the given TMDB id from the session's
// watchlist. Unknown sessions and ids are no-ops.
func (w *WatchlistStore) Remove(sessionID string, tmdbID int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	list := w.lists[sessionID]
	kept := list[:0]
	for _, m := range list {
		if m.TMDBID != tmdbID {
			kept = append(kept, m)
		}
	}
	w.lists[sessionID] = kept
}
