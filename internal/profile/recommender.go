package profile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cinematch/backend/pkg/common"
)

// EnrichEntities fills entity gaps from the accumulated profile. Today
// that means defaulting the mood to the session's strongest one; the
// extractor's own output always wins.
func (s *Store) EnrichEntities(sessionID string, entities common.ExtractedEntities) common.ExtractedEntities {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[sessionID]
	if !ok || p.InteractionCount < 1 {
		return entities
	}

	if entities.Mood == "" {
		if moods := p.topMoods(1); len(moods) > 0 {
			entities.Mood = moods[0]
		}
	}
	return entities
}

// PersonalizeRanking penalizes movies the session has already been
// recommended and boosts films matching the favorite genres. Profiles
// younger than two interactions are too thin to act on.
func (s *Store) PersonalizeRanking(sessionID string, ranked []common.RankedFilm, films []common.EnrichedFilm) []common.RankedFilm {
	s.mu.Lock()
	p, ok := s.profiles[sessionID]
	if !ok || p.InteractionCount < 2 {
		s.mu.Unlock()
		return ranked
	}

	seen := make(map[int]struct{}, len(p.LikedMovies))
	for _, id := range p.LikedMovies {
		seen[id] = struct{}{}
	}
	favorites := make(map[string]struct{}, 5)
	for _, g := range p.topGenres(5) {
		favorites[g] = struct{}{}
	}
	s.mu.Unlock()

	genresByID := make(map[int][]string, len(films))
	for _, f := range films {
		genresByID[f.TMDBID] = f.Genres
	}

	out := append([]common.RankedFilm{}, ranked...)
	for i := range out {
		if _, already := seen[out[i].TMDBID]; already {
			out[i].Score = max(0, out[i].Score-2.0)
		}
		matching := 0
		for _, g := range genresByID[out[i].TMDBID] {
			if _, ok := favorites[g]; ok {
				matching++
			}
		}
		if matching > 0 {
			out[i].Score = min(10, out[i].Score+float64(matching)*0.3)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// NarrativeContext renders the profile block injected into the
// narrative system prompt. Empty until the profile has at least two
// interactions behind it.
func (s *Store) NarrativeContext(sessionID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[sessionID]
	if !ok || p.InteractionCount < 2 {
		return ""
	}

	var parts []string
	if len(p.Tags) > 0 {
		parts = append(parts, "PERFIL DEL USUARIO: "+strings.Join(p.Tags, ", "))
	}
	if genres := p.topGenres(3); len(genres) > 0 {
		parts = append(parts, "Géneros favoritos: "+strings.Join(genres, ", "))
	}
	if moods := p.topMoods(2); len(moods) > 0 {
		parts = append(parts, "Estados de ánimo preferidos: "+strings.Join(moods, ", "))
	}
	if p.InteractionCount > 3 {
		parts = append(parts, fmt.Sprintf("Este usuario lleva %d interacciones, personaliza más la respuesta.", p.InteractionCount))
	}
	return strings.Join(parts, "\n")
}
