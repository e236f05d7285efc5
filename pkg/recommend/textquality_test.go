package recommend

import (
	"context"
	"strings"
	"testing"
)

func TestIsGarbled(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"short text never flagged", "Oye,¡mealegraque!", false},
		{
			"giant concatenated words",
			"Oye,¡mealegraquehayaspedidorecomendacionesdecomediaespañolaporquetengounasjoyitasparati! Sonpelículasquemezclanelhumorconelcorazón.",
			true,
		},
		{
			"normal prose",
			"Me alegro de que hayas pedido recomendaciones de comedia española, porque tengo unas joyitas para ti.",
			false,
		},
		{
			"lowercase uppercase adjacency",
			"holaQué talEsto pasaMucho cuandoFalta espacioEntre palabrasVarias vecesSeguidas en el texto.",
			true,
		},
		{
			"punctuation stuck to letters",
			"Primera frase.Segunda frase.Tercera frase.Cuarta frase.Y sigue el texto un poco más para superar el mínimo.",
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsGarbled(tt.text); got != tt.want {
				t.Fatalf("IsGarbled(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestInsertSpaces(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lower upper boundary", "holaQué tal", "hola Qué tal"},
		{"punctuation boundary", "Primera.Segunda", "Primera. Segunda"},
		{"comma boundary", "algo,que decir", "algo, que decir"},
		{"opening marks", "texto¡genial!", "texto ¡genial!"},
		{"stuck common word", "esto es algoque pasa", "esto es algo que pasa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InsertSpaces(tt.input); got != tt.want {
				t.Fatalf("InsertSpaces(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFixTextQualityLeavesGoodTextAlone(t *testing.T) {
	aiClient := &fakeAI{}
	text := "Una respuesta perfectamente legible con espacios correctos entre todas las palabras."
	if got := FixTextQuality(context.Background(), aiClient, text); got != text {
		t.Fatalf("text was modified: %q", got)
	}
	if len(aiClient.calls) != 0 {
		t.Error("no model call expected for clean text")
	}
}

func TestFixTextQualityAlgorithmicFirst(t *testing.T) {
	aiClient := &fakeAI{}
	// Garbled via adjacency, fully repairable by the regex pass.
	text := "holaQué talAmigo míoEsto esUna pruebaDe textoCon espaciosQue faltan entre muchas palabrasDel mensaje."
	got := FixTextQuality(context.Background(), aiClient, text)
	if IsGarbled(got) {
		t.Fatalf("still garbled after fix: %q", got)
	}
	if len(aiClient.calls) != 0 {
		t.Error("algorithmic fix should not reach the model")
	}
}

func TestFixTextQualityUsesLLMRewriteAsLastResort(t *testing.T) {
	rewritten := "Oye, me alegra que hayas pedido recomendaciones de comedia española, porque tengo unas joyitas para ti que mezclan el humor con el corazón y un poco de mala leche castiza."
	aiClient := &fakeAI{responses: []string{rewritten}}

	text := strings.Repeat("palabrasinespacioquenosearreglaconregexporquetodoesminúscula", 4)
	got := FixTextQuality(context.Background(), aiClient, text)
	if got != rewritten {
		t.Fatalf("got %q, want model rewrite", got)
	}
	if len(aiClient.calls) != 1 {
		t.Fatalf("model calls = %d, want 1", len(aiClient.calls))
	}
	if aiClient.calls[0].Temperature != 0.1 {
		t.Errorf("rewrite temperature = %v, want 0.1", aiClient.calls[0].Temperature)
	}
}

func TestFixTextQualityRejectsShortRewrite(t *testing.T) {
	aiClient := &fakeAI{responses: []string{"ok"}}

	text := strings.Repeat("palabrasinespacioquenosearreglaconregexporquetodoesminúscula", 4)
	got := FixTextQuality(context.Background(), aiClient, text)
	if got == "ok" {
		t.Fatal("suspiciously short rewrite must be rejected")
	}
}
