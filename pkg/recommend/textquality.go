package recommend

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/cinematch/backend/pkg/ai"
	"github.com/cinematch/backend/pkg/logger"
)

// Safety net for models that occasionally emit text with missing or
// misplaced spaces. Detection is heuristic; repair tries cheap regex
// passes before spending an LLM call.

const (
	garbleMinLen    = 50
	rewriteInputCap = 3000
)

var (
	lowerUpperRe  = regexp.MustCompile(`[a-záéíóú][A-ZÁÉÍÓÚ]`)
	punctLetterRe = regexp.MustCompile(`[.!?][a-záéíóúA-Z]`)
)

// IsGarbled reports whether text looks like it lost its spaces.
// Short texts are never flagged since the heuristics need volume.
func IsGarbled(text string) bool {
	if len(text) < garbleMinLen {
		return false
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return false
	}

	total := 0
	longWords := 0
	for _, w := range words {
		total += len(w)
		if len(w) > 30 {
			longWords++
		}
	}
	avgWordLen := float64(total) / float64(len(words))

	// Normal Spanish prose averages 4-6 chars per word.
	if avgWordLen > 12 {
		return true
	}
	if longWords > 2 {
		return true
	}
	if len(lowerUpperRe.FindAllString(text, -1)) > 5 {
		return true
	}
	if len(punctLetterRe.FindAllString(text, -1)) > 3 {
		return true
	}
	return false
}

var spaceInsertions = []struct {
	pattern *regexp.Regexp
	repl    string
}{
	{regexp.MustCompile(`([a-záéíóúüñ])([A-ZÁÉÍÓÚÜÑ])`), "${1} ${2}"},
	{regexp.MustCompile(`([.!?])([A-ZÁÉÍÓÚÜÑa-záéíóúüñ])`), "${1} ${2}"},
	{regexp.MustCompile(`([,;:])([A-ZÁÉÍÓÚÜÑa-záéíóúüñ])`), "${1} ${2}"},
	{regexp.MustCompile(`([a-záéíóúüñA-ZÁÉÍÓÚÜÑ])([¡¿])`), "${1} ${2}"},
	{regexp.MustCompile(`([!?»"])([a-záéíóúüñA-ZÁÉÍÓÚÜÑ])`), "${1} ${2}"},
}

// commonSpanishWords get detached when the model glues them onto the
// preceding word ("algoque" → "algo que").
var commonSpanishWords = []string{
	"que", "de", "del", "en", "el", "la", "los", "las", "un", "una",
	"con", "por", "para", "como", "pero", "sino", "cuando", "donde",
	"porque", "aunque", "mientras", "también", "además", "entonces",
	"sin", "sobre", "entre", "hasta", "desde", "durante", "hacia",
	"según", "contra", "tras", "mediante", "se", "te", "me", "le",
	"no", "ya", "más", "muy", "tan", "bien", "mal", "así", "aún",
	"es", "son", "fue", "ser", "hay", "tiene", "puede", "hace",
}

var stuckWordPatterns = buildStuckWordPatterns()

func buildStuckWordPatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(commonSpanishWords))
	for _, word := range commonSpanishWords {
		patterns = append(patterns, regexp.MustCompile(
			`(?i)([a-záéíóúüñ])(`+regexp.QuoteMeta(word)+`)([^a-záéíóúüñ]|$)`,
		))
	}
	return patterns
}

// InsertSpaces is the algorithmic repair pass: boundary regexes first,
// then the common-word dictionary.
func InsertSpaces(text string) string {
	if text == "" {
		return text
	}

	for _, si := range spaceInsertions {
		text = si.pattern.ReplaceAllString(text, si.repl)
	}
	for _, p := range stuckWordPatterns {
		text = p.ReplaceAllString(text, "${1} ${2}${3}")
	}
	return text
}

// FixTextQuality repairs garbled narrative output. The algorithmic
// pass runs first; the LLM rewrite is a last resort and its output is
// only accepted when it is demonstrably better.
func FixTextQuality(ctx context.Context, aiClient ai.Client, text string) string {
	if text == "" || !IsGarbled(text) {
		return text
	}

	logger.Warn("Garbled text detected, attempting fix")
	fixed := InsertSpaces(text)
	if !IsGarbled(fixed) {
		logger.Info("Text fixed algorithmically")
		return fixed
	}

	logger.Info("Algorithmic fix insufficient, using LLM rewrite")
	input := text
	if len(input) > rewriteInputCap {
		input = input[:rewriteInputCap]
	}

	rewritten, err := aiClient.GenerateChat(ctx,
		[]ai.ChatMessage{{Role: "user", Message: fmt.Sprintf("Corrige este texto:\n\n%s", input)}},
		ai.WithSystemPrompts(rewriteSystemPrompt),
		ai.WithTemperature(0.1),
		ai.WithTopP(0.9),
		ai.WithMaxTokens(2000),
	)
	if err != nil {
		logger.Error("LLM rewrite failed", "err", err)
		return fixed
	}

	rewritten = strings.TrimSpace(rewritten)
	if rewritten != "" && len(rewritten) > len(text)/2 && !IsGarbled(rewritten) {
		logger.Info("Text rewritten by model")
		return rewritten
	}

	logger.Warn("LLM rewrite did not improve text, keeping algorithmic version")
	return fixed
}
