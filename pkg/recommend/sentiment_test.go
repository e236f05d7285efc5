package recommend

import (
	"context"
	"slices"
	"testing"
)

func TestAnalyzeSentimentLabels(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		label     string
		intensity string
	}{
		{"very positive", "¡Me encanta! Es increíble, una obra maestra", "very_positive", "high"},
		{"mild positive", "Está bien, interesante", "positive", "normal"},
		{"neutral", "Ponme una del oeste", "neutral", "normal"},
		{"negative", "Meh, regular", "negative", "normal"},
		{"very negative", "Horrible, qué basura, la odio", "very_negative", "high"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeSentiment(tt.text)
			if got.SentimentLabel != tt.label {
				t.Errorf("label = %q, want %q (score %v)", got.SentimentLabel, tt.label, got.SentimentScore)
			}
			if got.Intensity != tt.intensity {
				t.Errorf("intensity = %q, want %q", got.Intensity, tt.intensity)
			}
		})
	}
}

func TestAnalyzeSentimentScoreClamped(t *testing.T) {
	text := "me encanta increíble maravilloso perfecto genial fantástico brillante"
	got := AnalyzeSentiment(text)
	if got.SentimentScore != 1.0 {
		t.Errorf("score = %v, want clamped to 1.0", got.SentimentScore)
	}
}

func TestAnalyzeSentimentIntents(t *testing.T) {
	got := AnalyzeSentiment("Gracias, pero quiero algo más diferente, ¿qué más hay?")
	for _, intent := range []string{"refine", "explore", "gratitude"} {
		if !slices.Contains(got.Intents, intent) {
			t.Errorf("intents = %v, missing %q", got.Intents, intent)
		}
	}
}

func TestAnalyzeSentimentDetailAndEmotion(t *testing.T) {
	got := AnalyzeSentiment("Cuéntame más sobre esa, ¿por qué la recomiendas? Me recuerda a mi infancia")
	if got.DetailPreference != "verbose" {
		t.Errorf("detail = %q, want verbose", got.DetailPreference)
	}
	if !slices.Contains(got.EmotionalSignals, "nostalgia") {
		t.Errorf("emotions = %v, missing nostalgia", got.EmotionalSignals)
	}
	if !slices.Contains(got.EmotionalSignals, "curiosity") {
		t.Errorf("emotions = %v, missing curiosity", got.EmotionalSignals)
	}
}

func TestAnalyzeSentimentWithLLM(t *testing.T) {
	aiClient := &fakeAI{responses: []string{
		`{"satisfaction": "high", "wants_more": true, "wants_different": false, "specific_feedback": "quiere más del mismo estilo", "recommended_tone": "enthusiastic"}`,
	}}

	got := AnalyzeSentimentWithLLM(context.Background(), aiClient, "me encantaron, ponme más así", "")
	if got.Satisfaction != "high" || !got.WantsMore || got.WantsDifferent {
		t.Fatalf("deep sentiment = %+v", got)
	}
}

func TestAnalyzeSentimentWithLLMDegradesOnFailure(t *testing.T) {
	aiClient := &fakeAI{responses: []string{"no es json"}}
	got := AnalyzeSentimentWithLLM(context.Background(), aiClient, "mensaje", "contexto")
	if got != (DeepSentiment{}) {
		t.Fatalf("want zero result on parse failure, got %+v", got)
	}
}
