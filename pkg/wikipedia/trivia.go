package wikipedia

import (
	"regexp"
	"strings"
)

const (
	maxFacts       = 5
	minSentenceLen = 20
	maxSentenceLen = 300
)

// factPatterns pick out the sentences readers actually find
// interesting: awards, source material, production and reception.
var factPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(ganó|ganadora?|nominad|premi|óscar|oscar|globo de oro|goya|palma de oro)`),
	regexp.MustCompile(`(?i)(basada en|basado en|adaptación|inspirada en|based on)`),
	regexp.MustCompile(`(?i)(dirigida por|dirigido por|directed by|debut como director)`),
	regexp.MustCompile(`(?i)(recaud|taquilla|box office|presupuesto)`),
	regexp.MustCompile(`(?i)(rodad|filmad|rodaje|filmed|grabad)`),
	regexp.MustCompile(`(?i)(protagonizada|protagonizado|starring|interpretad)`),
}

var sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]`)

// ExtractFacts pulls up to five trivia-worthy sentences out of an
// article extract. Sentences outside the 20-300 character range are
// skipped since they tend to be fragments or plot dumps.
func ExtractFacts(extract string) []string {
	if extract == "" {
		return nil
	}

	var facts []string
	for _, raw := range sentenceRe.FindAllString(extract, -1) {
		sentence := strings.TrimSpace(raw)
		if len(sentence) < minSentenceLen || len(sentence) > maxSentenceLen {
			continue
		}
		for _, p := range factPatterns {
			if p.MatchString(sentence) {
				facts = append(facts, sentence)
				break
			}
		}
		if len(facts) >= maxFacts {
			break
		}
	}
	return facts
}
