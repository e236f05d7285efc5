package recommend

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/cinematch/backend/pkg/common"
)

func rerankCandidates() []common.EnrichedFilm {
	return []common.EnrichedFilm{
		{TMDBID: 1, Title: "Torrente: El brazo tonto de la ley", ReleaseYear: 1998, VoteAverage: 6.6},
		{TMDBID: 2, Title: "Airbag", ReleaseYear: 1997, VoteAverage: 6.9},
		{TMDBID: 3, Title: "Torrente 2: Misión en Marbella", ReleaseYear: 2001, VoteAverage: 6.0},
		{TMDBID: 4, Title: "El milagro de P. Tinto", ReleaseYear: 1998, VoteAverage: 6.8},
	}
}

func TestRerankParsesAndSorts(t *testing.T) {
	aiClient := &fakeAI{responses: []string{
		`[{"id": 2, "score": 7.0, "reason": "encaja"},
		  {"id": 1, "score": 9.1, "reason": "perfecta"},
		  {"id": 4, "score": 8.0, "reason": "buena"}]`,
	}}

	ranked := Rerank(context.Background(), aiClient, "comedia española noventera", rerankCandidates())
	if len(ranked) != 3 {
		t.Fatalf("ranked = %d, want 3", len(ranked))
	}
	if ranked[0].TMDBID != 1 || ranked[1].TMDBID != 4 || ranked[2].TMDBID != 2 {
		t.Errorf("order = %d,%d,%d, want 1,4,2", ranked[0].TMDBID, ranked[1].TMDBID, ranked[2].TMDBID)
	}

	prompt := aiClient.prompts[0]
	if !strings.Contains(prompt, "«Airbag» (1997)") {
		t.Errorf("prompt missing candidate block:\n%s", prompt)
	}
}

func TestBuildRerankUserPromptCutsOverviewOnRuneBoundary(t *testing.T) {
	films := rerankCandidates()[:1]
	films[0].Overview = strings.Repeat("ñ", 400)

	prompt := buildRerankUserPrompt("comedia", films)
	if !utf8.ValidString(prompt) {
		t.Fatal("prompt contains a split multibyte sequence")
	}
	if got := strings.Count(prompt, "ñ"); got != 300 {
		t.Errorf("overview runes in prompt = %d, want 300", got)
	}
}

func TestRerankSkipsMalformedEntries(t *testing.T) {
	aiClient := &fakeAI{responses: []string{
		`[{"score": 9.0, "reason": "sin id"}, {"id": 2, "score": 7.5, "reason": "ok"}]`,
	}}

	ranked := Rerank(context.Background(), aiClient, "lo que sea", rerankCandidates())
	if len(ranked) != 1 || ranked[0].TMDBID != 2 {
		t.Fatalf("ranked = %+v, want only id 2", ranked)
	}
}

func TestRerankFallsBackToVoteAverage(t *testing.T) {
	aiClient := &fakeAI{responses: []string{"el modelo divaga y no responde con JSON"}}

	ranked := Rerank(context.Background(), aiClient, "lo que sea", rerankCandidates())
	if len(ranked) != 4 {
		t.Fatalf("ranked = %d, want all 4", len(ranked))
	}
	if ranked[0].TMDBID != 2 {
		t.Errorf("top = %d, want 2 (highest vote average)", ranked[0].TMDBID)
	}
	for _, r := range ranked {
		if r.Reason != "Puntuación de TMDB (fallback)" {
			t.Errorf("reason = %q", r.Reason)
		}
	}
}

func TestRerankEmptyInput(t *testing.T) {
	aiClient := &fakeAI{}
	if got := Rerank(context.Background(), aiClient, "q", nil); len(got) != 0 {
		t.Fatalf("ranked = %v, want empty", got)
	}
	if len(aiClient.calls) != 0 {
		t.Error("no model call expected for empty input")
	}
}

func TestSelectTopNDeduplicatesFranchises(t *testing.T) {
	films := rerankCandidates()
	ranked := []common.RankedFilm{
		{TMDBID: 1, Score: 9.1},
		{TMDBID: 3, Score: 8.9},
		{TMDBID: 2, Score: 8.0},
		{TMDBID: 4, Score: 7.0},
	}

	// Both Torrente entries share the pre-colon title root.
	films[0].Title = "Torrente: El brazo tonto de la ley"
	films[2].Title = "Torrente: Misión en Marbella"

	selected := SelectTopN(ranked, films, 3)
	if len(selected) != 3 {
		t.Fatalf("selected = %d, want 3", len(selected))
	}
	if selected[0].TMDBID != 1 || selected[1].TMDBID != 2 || selected[2].TMDBID != 4 {
		t.Errorf("selected ids = %d,%d,%d, want 1,2,4 (second Torrente skipped)",
			selected[0].TMDBID, selected[1].TMDBID, selected[2].TMDBID)
	}
	if selected[0].RelevanceScore != 9.1 {
		t.Errorf("RelevanceScore = %v, want 9.1", selected[0].RelevanceScore)
	}
}

func TestSelectTopNSkipsUnknownIDs(t *testing.T) {
	films := rerankCandidates()
	ranked := []common.RankedFilm{
		{TMDBID: 999, Score: 10},
		{TMDBID: 2, Score: 8.0},
	}
	selected := SelectTopN(ranked, films, 2)
	if len(selected) != 1 || selected[0].TMDBID != 2 {
		t.Fatalf("selected = %+v, want only id 2", selected)
	}
}
