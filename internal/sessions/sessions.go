package sessions

import (
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/cinematch/backend/pkg/common"
	"github.com/cinematch/backend/pkg/logger"
)

const (
	// sessionTTL is how long an idle session survives before a
	// cleanup sweep removes it.
	sessionTTL = 2 * time.Hour

	// maxTurnEntries caps the stored history at the last ten
	// exchanges (a user and an assistant entry per exchange).
	maxTurnEntries = 20
)

// Store keeps multi-turn conversation state in memory, keyed by
// session ID. All methods are safe for concurrent use. Reads return
// copies so callers never share the internal state.
type Store struct {
	mu        sync.Mutex
	sessions  map[string]*common.SessionContext
	touchedAt map[string]time.Time

	now func() time.Time
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions:  make(map[string]*common.SessionContext),
		touchedAt: make(map[string]time.Time),
		now:       time.Now,
	}
}

// GetOrCreate returns the session for sessionID, refreshing its TTL.
// An empty or unknown ID creates a fresh session; unknown IDs are
// honored so clients can pin their own identifiers.
func (s *Store) GetOrCreate(sessionID string) common.SessionContext {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sessionID != "" {
		if ctx, ok := s.sessions[sessionID]; ok {
			s.touchedAt[sessionID] = s.now()
			return copySession(ctx)
		}
	}

	id := sessionID
	if id == "" {
		var err error
		if id, err = gonanoid.New(); err != nil {
			// Practically unreachable; nanoid only fails when the
			// OS random source does.
			id = time.Now().Format("20060102150405.000000000")
			logger.Error("Session ID generation failed", "err", err)
		}
	}

	ctx := &common.SessionContext{
		SessionID:           id,
		Turns:               []common.ConversationTurn{},
		LastRecommendations: []common.RecommendationItem{},
	}
	s.sessions[id] = ctx
	s.touchedAt[id] = s.now()
	return copySession(ctx)
}

// Get returns a copy of the session, or false when it does not exist.
func (s *Store) Get(sessionID string) (common.SessionContext, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, ok := s.sessions[sessionID]
	if !ok {
		return common.SessionContext{}, false
	}
	return copySession(ctx), true
}

// SaveTurn appends a user/assistant exchange and updates the stored
// entities and recommendations. Unknown session IDs are ignored.
func (s *Store) SaveTurn(
	sessionID, userMsg, assistantMsg string,
	entities *common.ExtractedEntities,
	recommendations []common.RecommendationItem,
) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, ok := s.sessions[sessionID]
	if !ok {
		return
	}

	ctx.Turns = append(ctx.Turns,
		common.ConversationTurn{Role: "user", Content: userMsg},
		common.ConversationTurn{Role: "assistant", Content: assistantMsg},
	)
	if len(ctx.Turns) > maxTurnEntries {
		ctx.Turns = append([]common.ConversationTurn{}, ctx.Turns[len(ctx.Turns)-maxTurnEntries:]...)
	}

	if entities != nil {
		copied := *entities
		ctx.LastEntities = &copied
	}
	if len(recommendations) > 0 {
		ctx.LastRecommendations = append([]common.RecommendationItem{}, recommendations...)
	}

	s.touchedAt[sessionID] = s.now()
}

// Delete removes a session and reports whether it existed.
func (s *Store) Delete(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, existed := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	delete(s.touchedAt, sessionID)
	return existed
}

// CleanupExpired removes sessions idle longer than the TTL and
// returns how many were removed.
func (s *Store) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, touched := range s.touchedAt {
		if now.Sub(touched) > sessionTTL {
			delete(s.sessions, id)
			delete(s.touchedAt, id)
			removed++
		}
	}
	if removed > 0 {
		logger.Info("Expired sessions removed", "count", removed)
	}
	return removed
}

func copySession(ctx *common.SessionContext) common.SessionContext {
	out := common.SessionContext{
		SessionID:           ctx.SessionID,
		Turns:               append([]common.ConversationTurn{}, ctx.Turns...),
		LastRecommendations: append([]common.RecommendationItem{}, ctx.LastRecommendations...),
	}
	if ctx.LastEntities != nil {
		entities := *ctx.LastEntities
		out.LastEntities = &entities
	}
	return out
}
