package recommend

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CleanNarrative is the multi-pass post-processor for narrative output.
// It repairs tokenizer artifacts (split words), concatenated words,
// punctuation spacing and markdown emphasis, then collapses whitespace.
func CleanNarrative(text string) string {
	if text == "" {
		return text
	}

	text = norm.NFC.String(text)
	text = fixSplitWords(text)
	text = fixMissingSpaces(text)
	text = fixPunctuation(text)
	text = fixMarkdown(text)

	text = multiSpaceRe.ReplaceAllString(text, " ")
	text = multiNewlineRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

var (
	multiSpaceRe   = regexp.MustCompile(` {2,}`)
	multiNewlineRe = regexp.MustCompile(`\n{3,}`)

	singleCharSplitRe = regexp.MustCompile(`(\w)\s([a-záéíóúüñA-ZÁÉÍÓÚÜÑ])\s(\w)`)
	fragmentSplitRe   = regexp.MustCompile(`(\w)\s([a-záéíóúüñ]{1,2})\s(\w)`)
)

// spanishFixes repair the specific words the tokenizer breaks most
// often in practice.
var spanishFixes = []struct {
	pattern *regexp.Regexp
	repl    string
}{
	{regexp.MustCompile(`(?i)\bpel\s*[íi]\s*cula`), "película"},
	{regexp.MustCompile(`(?i)\bci\s*encia\s*fic\s*ci[oó]n`), "ciencia ficción"},
	{regexp.MustCompile(`(?i)\bre\s*com\s*end`), "recomend"},
	{regexp.MustCompile(`(?i)\breflex\s*i[oó]n`), "reflexión"},
	{regexp.MustCompile(`(?i)\bcon\s*ex\s*i[oó]n`), "conexión"},
	{regexp.MustCompile(`(?i)\bemo\s*ci[oó]n`), "emoción"},
	{regexp.MustCompile(`(?i)\bsu\s*perv\s*iv\s*encia`), "supervivencia"},
	{regexp.MustCompile(`(?i)\bint\s*el\s*ig\s*encia`), "inteligencia"},
	{regexp.MustCompile(`(?i)\bart\s*if\s*ic\s*ial`), "artificial"},
}

// spanishStopFragments are real one- and two-letter Spanish words. The
// generic fragment joins must leave them alone or "película es" turns
// into "películaes".
var spanishStopFragments = map[string]struct{}{
	"y": {}, "o": {}, "a": {}, "e": {}, "u": {},
	"de": {}, "el": {}, "la": {}, "en": {}, "es": {}, "un": {},
	"se": {}, "te": {}, "me": {}, "le": {}, "no": {}, "ya": {},
	"al": {}, "lo": {}, "mi": {}, "tu": {}, "su": {}, "si": {},
	"ni": {}, "da": {}, "va": {}, "ha": {}, "he": {},
}

func joinFragments(text string, re *regexp.Regexp, passes int) string {
	for i := 0; i < passes; i++ {
		next := re.ReplaceAllStringFunc(text, func(m string) string {
			parts := re.FindStringSubmatch(m)
			if _, stop := spanishStopFragments[strings.ToLower(parts[2])]; stop {
				return m
			}
			return parts[1] + parts[2] + parts[3]
		})
		if next == text {
			break
		}
		text = next
	}
	return text
}

// fixSplitWords rejoins syllables separated by stray spaces, e.g.
// "pel í cula" back to "película". Known broken words are repaired
// first so the generic passes see clean boundaries.
func fixSplitWords(text string) string {
	for _, f := range spanishFixes {
		text = f.pattern.ReplaceAllString(text, f.repl)
	}

	text = joinFragments(text, singleCharSplitRe, 10)
	text = joinFragments(text, fragmentSplitRe, 5)
	return text
}

var missingSpaceFixes = []struct {
	pattern *regexp.Regexp
	repl    string
}{
	{regexp.MustCompile(`([a-záéíóúüñ])([A-ZÁÉÍÓÚÜÑ])`), "${1} ${2}"},
	{regexp.MustCompile(`([.!?])([A-ZÁÉÍÓÚÜÑa-záéíóúüñ])`), "${1} ${2}"},
	{regexp.MustCompile(`([,;])([A-ZÁÉÍÓÚÜÑa-záéíóúüñ])`), "${1} ${2}"},
	{regexp.MustCompile(`(:)([A-ZÁÉÍÓÚÜÑa-záéíóúüñ])`), "${1} ${2}"},
	{regexp.MustCompile(`([a-záéíóúüñA-ZÁÉÍÓÚÜÑ])([¡¿])`), "${1} ${2}"},
	{regexp.MustCompile(`([!?])([a-záéíóúüñA-ZÁÉÍÓÚÜÑ])`), "${1} ${2}"},
	{regexp.MustCompile(`([»")\]])([a-záéíóúüñA-ZÁÉÍÓÚÜÑ])`), "${1} ${2}"},
	{regexp.MustCompile(`([a-záéíóúüñA-ZÁÉÍÓÚÜÑ])([«"(\[])`), "${1} ${2}"},
}

func fixMissingSpaces(text string) string {
	for _, f := range missingSpaceFixes {
		text = f.pattern.ReplaceAllString(text, f.repl)
	}
	return text
}

var (
	spaceBeforeCloseRe = regexp.MustCompile(`\s+([.,;:!?)\]}»"])`)
	spaceAfterOpenRe   = regexp.MustCompile(`([(\[{«"¿¡])\s+`)
	sentenceGapRe      = regexp.MustCompile(`([.!?])([A-ZÁÉÍÓÚÑ])`)
)

func fixPunctuation(text string) string {
	text = spaceBeforeCloseRe.ReplaceAllString(text, "${1}")
	text = spaceAfterOpenRe.ReplaceAllString(text, "${1}")
	text = sentenceGapRe.ReplaceAllString(text, "${1} ${2}")
	return text
}

var (
	boldSpacingRe = regexp.MustCompile(`\*\*\s+([^*]+?)\s+\*\*`)
	// RE2 has no lookarounds, so single-star matching anchors on the
	// surrounding non-star characters instead.
	italicSpacingRe = regexp.MustCompile(`(^|[^*])\*\s+([^*]+?)\s+\*($|[^*])`)
)

// fixMarkdown tightens "** texto **" to "**texto**" and the same for
// single-star emphasis.
func fixMarkdown(text string) string {
	text = boldSpacingRe.ReplaceAllString(text, "**${1}**")
	text = italicSpacingRe.ReplaceAllString(text, "${1}*${2}*${3}")
	return text
}
