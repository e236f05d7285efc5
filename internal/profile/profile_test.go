package profile

import (
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/cinematch/backend/pkg/common"
)

func TestAnalyzeMessage(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		sentiment string
		moods     []string
		eras      []string
	}{
		{
			"positive with mood and era",
			"me encantó, quiero algo de humor de los 90",
			"positive",
			[]string{"humor"},
			[]string{"90s"},
		},
		{
			"negative",
			"no me gustó nada, era aburrida",
			"negative",
			nil,
			nil,
		},
		{
			"neutral request",
			"ponme algo del oeste",
			"neutral",
			nil,
			nil,
		},
		{
			"dark classic",
			"algo oscuro y clásico, tipo noir",
			"neutral",
			[]string{"oscuro"},
			[]string{"clásico"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analyzeMessage(tt.text)
			if got.sentiment != tt.sentiment {
				t.Errorf("sentiment = %q, want %q", got.sentiment, tt.sentiment)
			}
			for _, m := range tt.moods {
				if !slices.Contains(got.detectedMoods, m) {
					t.Errorf("moods = %v, missing %q", got.detectedMoods, m)
				}
			}
			for _, e := range tt.eras {
				if !slices.Contains(got.detectedEras, e) {
					t.Errorf("eras = %v, missing %q", got.detectedEras, e)
				}
			}
		})
	}
}

func TestUpdateFromInteraction(t *testing.T) {
	store := NewStore()
	entities := &common.ExtractedEntities{
		Genres:   []string{"Comedia"},
		Keywords: []string{"atracos"},
		Mood:     "oscuro y perturbador",
		Era:      "90s",
	}
	recs := []common.RecommendationItem{
		{TMDBID: 1, Score: 9.0},
		{TMDBID: 2, Score: 7.0},
	}

	store.UpdateFromInteraction("s1",
		"me encantó, quiero algo de humor de los 90",
		entities, recs,
		[]string{"Comedia", "Acción"},
		[]string{"atracos", "amigos"},
	)

	snap, ok := store.Snapshot("s1")
	if !ok {
		t.Fatal("profile not created")
	}

	// Explicit mention (+3) plus implicit from the shown film (+1).
	if snap.GenreAffinity["Comedia"] != 4 {
		t.Errorf("Comedia affinity = %d, want 4", snap.GenreAffinity["Comedia"])
	}
	if snap.GenreAffinity["Acción"] != 1 {
		t.Errorf("Acción affinity = %d, want 1", snap.GenreAffinity["Acción"])
	}
	// +2 explicit, +1 implicit.
	if snap.KeywordAffinity["atracos"] != 3 {
		t.Errorf("atracos affinity = %d, want 3", snap.KeywordAffinity["atracos"])
	}
	// Regex detection (+2) plus matched entity era (+1).
	if snap.EraPreference["90s"] != 3 {
		t.Errorf("90s preference = %d, want 3", snap.EraPreference["90s"])
	}
	// humor from the message, oscuro from the entity mood.
	if snap.MoodAffinity["humor"] != 2 || snap.MoodAffinity["oscuro"] != 1 {
		t.Errorf("mood affinity = %v", snap.MoodAffinity)
	}

	if !slices.Equal(snap.LikedMovies, []int{1, 2}) {
		t.Errorf("LikedMovies = %v", snap.LikedMovies)
	}
	// 7.0*0.7 + 9.0*0.3; only the score >= 8 moves the average.
	if snap.AvgPreferredRating != 7.6 {
		t.Errorf("AvgPreferredRating = %v, want 7.6", snap.AvgPreferredRating)
	}
	if snap.InteractionCount != 1 {
		t.Errorf("InteractionCount = %d", snap.InteractionCount)
	}
	if !slices.Contains(snap.ArchetypeTags, "Cazador de Risas") {
		t.Errorf("tags = %v, missing genre archetype", snap.ArchetypeTags)
	}
	if !slices.Contains(snap.ArchetypeTags, "Espíritu Alegre") {
		t.Errorf("tags = %v, missing mood archetype", snap.ArchetypeTags)
	}
}

func TestArchetypeMilestones(t *testing.T) {
	store := NewStore()
	recs := []common.RecommendationItem{{TMDBID: 1}, {TMDBID: 2}, {TMDBID: 3}}
	for i := 0; i < 6; i++ {
		store.UpdateFromInteraction("s1", "ponme algo", nil, recs, nil, nil)
	}

	snap, _ := store.Snapshot("s1")
	if !slices.Contains(snap.ArchetypeTags, "Cinéfilo Activo") {
		t.Errorf("tags = %v, want Cinéfilo Activo after >5 interactions", snap.ArchetypeTags)
	}
	if !slices.Contains(snap.ArchetypeTags, "Coleccionista") {
		t.Errorf("tags = %v, want Coleccionista after >8 liked movies", snap.ArchetypeTags)
	}
	if len(snap.ArchetypeTags) > 5 {
		t.Errorf("tags = %v, capped at 5", snap.ArchetypeTags)
	}
}

func TestEnrichEntitiesDefaultsMood(t *testing.T) {
	store := NewStore()

	// No profile yet: entities pass through untouched.
	in := common.ExtractedEntities{Genres: []string{"drama"}}
	if got := store.EnrichEntities("s1", in); got.Mood != "" {
		t.Errorf("Mood = %q, want empty without profile", got.Mood)
	}

	store.UpdateFromInteraction("s1", "algo de humor", nil, nil, nil, nil)

	if got := store.EnrichEntities("s1", in); got.Mood != "humor" {
		t.Errorf("Mood = %q, want profile default humor", got.Mood)
	}

	in.Mood = "triste"
	if got := store.EnrichEntities("s1", in); got.Mood != "triste" {
		t.Errorf("Mood = %q, extractor output must win", got.Mood)
	}
}

func TestPersonalizeRanking(t *testing.T) {
	store := NewStore()
	entities := &common.ExtractedEntities{Genres: []string{"Drama"}}
	recs := []common.RecommendationItem{{TMDBID: 10, Score: 9.0}}
	store.UpdateFromInteraction("s1", "un drama", entities, recs, nil, nil)
	store.UpdateFromInteraction("s1", "otro drama", entities, recs, nil, nil)

	ranked := []common.RankedFilm{
		{TMDBID: 10, Score: 9.0},
		{TMDBID: 11, Score: 8.0},
	}
	films := []common.EnrichedFilm{
		{TMDBID: 10, Genres: []string{"Drama"}},
		{TMDBID: 11, Genres: []string{"Drama"}},
	}

	got := store.PersonalizeRanking("s1", ranked, films)
	if got[0].TMDBID != 11 {
		t.Fatalf("order = %v, seen movie must drop below the fresh one", got)
	}
	// 8.0 + one favorite-genre match.
	if math.Abs(got[0].Score-8.3) > 1e-9 {
		t.Errorf("fresh score = %v, want 8.3", got[0].Score)
	}
	// 9.0 - 2.0 seen penalty + 0.3 genre boost.
	if math.Abs(got[1].Score-7.3) > 1e-9 {
		t.Errorf("seen score = %v, want 7.3", got[1].Score)
	}

	// Input order preserved for thin profiles.
	fresh := NewStore()
	if got := fresh.PersonalizeRanking("s1", ranked, films); got[0].TMDBID != 10 {
		t.Errorf("thin profile must not reorder: %v", got)
	}
}

func TestNarrativeContext(t *testing.T) {
	store := NewStore()
	if got := store.NarrativeContext("s1"); got != "" {
		t.Fatalf("context = %q, want empty without profile", got)
	}

	entities := &common.ExtractedEntities{Genres: []string{"Drama"}}
	for i := 0; i < 4; i++ {
		store.UpdateFromInteraction("s1", "un drama profundo", entities, nil, nil, nil)
	}

	got := store.NarrativeContext("s1")
	for _, want := range []string{
		"PERFIL DEL USUARIO:",
		"Géneros favoritos: Drama",
		"lleva 4 interacciones",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("context missing %q:\n%s", want, got)
		}
	}
}
