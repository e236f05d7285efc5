package recommend

import (
	"context"
	"fmt"
	"regexp"

	"github.com/cinematch/backend/pkg/ai"
	"github.com/cinematch/backend/pkg/logger"
)

// SentimentAnalysis is the lexicon-based read of one user message.
type SentimentAnalysis struct {
	SentimentScore   float64  `json:"sentiment_score"`
	SentimentLabel   string   `json:"sentiment_label"`
	Intensity        string   `json:"intensity"`
	Intents          []string `json:"intents"`
	DetailPreference string   `json:"detail_preference"`
	EmotionalSignals []string `json:"emotional_signals"`
}

// Spanish-first lexicon with the English terms users mix in anyway.
var (
	intensityPositiveRe = regexp.MustCompile(`(?i)\b(me encanta|increíble|maravill|extraordinari|brill|perfecto|genial|fantástic|magnificent|masterpiece|obra maestra)`)
	mildPositiveRe      = regexp.MustCompile(`(?i)\b(bueno|bien|interesante|gust[aó]|ok|vale|correcto|interesting|nice|good|cool)\b`)
	mildNegativeRe      = regexp.MustCompile(`(?i)\b(no mucho|regular|meh|flojo|no tanto|not really|mediocre|so-so)\b`)
	intensityNegativeRe = regexp.MustCompile(`(?i)\b(odio|horrible|terrible|asco|basura|malísim|hate|awful|worst|garbage|pésim)`)
)

var intentPatterns = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"refine", regexp.MustCompile(`(?i)\b(pero|aunque|sin embargo|excepto|menos|salvo|no.*sino|quiero.*más|algo.*diferente|cambi)`)},
	{"explore", regexp.MustCompile(`(?i)\b(qué más|hay más|otra|otro|diferente|nuevo|distint|sorpr|recomienda|suggest|explore|discover)`)},
	{"specific", regexp.MustCompile(`(?i)\b(exactamente|justo|precisamente|tipo|como|parecida|estilo|similar|igual)\b`)},
	{"broad", regexp.MustCompile(`(?i)\b(cualquier|lo que sea|da igual|no importa|whatever|anything|algo|something)\b`)},
	{"gratitude", regexp.MustCompile(`(?i)\b(gracias|thanks|thx|genial|perfecto|me encanta|great|awesome)\b`)},
}

var detailPatterns = []struct {
	level   string
	pattern *regexp.Regexp
}{
	{"verbose", regexp.MustCompile(`(?i)\b(cuéntame más|explícame|detall|en profundidad|tell me more|elaborate|por qué|why)`)},
	{"brief", regexp.MustCompile(`(?i)\b(breve|corto|resumen|rápido|brief|quick|short|solo nombres|just names)\b`)},
}

var emotionPatterns = []struct {
	emotion string
	pattern *regexp.Regexp
}{
	{"excitement", regexp.MustCompile(`(?i)!{2,}|wow|increíble|amazing`)},
	{"curiosity", regexp.MustCompile(`(?i)\?|qué|cómo|por qué|dónde|cuándo|what|how|why|where`)},
	{"nostalgia", regexp.MustCompile(`(?i)recuerdo|de pequeño|cuando era|infancia|nostalg|remember|childhood`)},
	{"urgency", regexp.MustCompile(`(?i)rápido|ya|ahora|hoy|tonight|quick|now|hurry`)},
	{"frustration", regexp.MustCompile(`(?i)no entiendes|otra vez|ya te dije|de nuevo|again|already told`)},
}

// AnalyzeSentiment scores a user message with weighted lexicon matches
// and tags intents, detail preference and emotional signals. It is
// purely advisory: the pipeline logs it and the API exposes it, but it
// does not change scoring.
func AnalyzeSentiment(text string) SentimentAnalysis {
	result := SentimentAnalysis{
		SentimentLabel:   "neutral",
		Intensity:        "normal",
		Intents:          []string{},
		DetailPreference: "normal",
		EmotionalSignals: []string{},
	}

	score := 0.0
	score += float64(len(intensityPositiveRe.FindAllString(text, -1))) * 0.4
	score += float64(len(mildPositiveRe.FindAllString(text, -1))) * 0.15
	score -= float64(len(mildNegativeRe.FindAllString(text, -1))) * 0.15
	score -= float64(len(intensityNegativeRe.FindAllString(text, -1))) * 0.4

	result.SentimentScore = clamp(score, -1.0, 1.0)

	switch {
	case score > 0.3:
		result.SentimentLabel = "very_positive"
		result.Intensity = "high"
	case score > 0.1:
		result.SentimentLabel = "positive"
	case score < -0.3:
		result.SentimentLabel = "very_negative"
		result.Intensity = "high"
	case score < -0.1:
		result.SentimentLabel = "negative"
	}

	for _, ip := range intentPatterns {
		if ip.pattern.MatchString(text) {
			result.Intents = append(result.Intents, ip.name)
		}
	}

	for _, dp := range detailPatterns {
		if dp.pattern.MatchString(text) {
			result.DetailPreference = dp.level
			break
		}
	}

	for _, ep := range emotionPatterns {
		if ep.pattern.MatchString(text) {
			result.EmotionalSignals = append(result.EmotionalSignals, ep.emotion)
		}
	}

	return result
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DeepSentiment is the schema-constrained result of the LLM analysis.
type DeepSentiment struct {
	Satisfaction     string `json:"satisfaction" jsonschema:"enum=high,enum=medium,enum=low,enum=unknown" jsonschema_description:"Overall satisfaction read from the message"`
	WantsMore        bool   `json:"wants_more" jsonschema_description:"User wants more recommendations like the previous ones"`
	WantsDifferent   bool   `json:"wants_different" jsonschema_description:"User wants something different from the previous ones"`
	SpecificFeedback string `json:"specific_feedback" jsonschema_description:"Short description of what the user asks for or feels"`
	RecommendedTone  string `json:"recommended_tone" jsonschema:"enum=enthusiastic,enum=calm,enum=empathetic,enum=serious"`
}

// AnalyzeSentimentWithLLM runs a deeper model-based analysis for
// ambiguous messages. Failures return a zero result, never an error,
// since the lexicon analysis already covers the basics.
func AnalyzeSentimentWithLLM(ctx context.Context, aiClient ai.Client, text, context_ string) DeepSentiment {
	prompt := fmt.Sprintf(
		"Analiza el sentimiento e intención de este mensaje de usuario en una app de recomendación de películas.\n\nMensaje: %q\n",
		text,
	)
	if context_ != "" {
		prompt += fmt.Sprintf("Contexto previo: %s\n", context_)
	}

	var out DeepSentiment
	err := aiClient.GenerateChatWithFormat(ctx,
		"sentiment_analysis",
		"Sentiment and intent analysis of a movie-recommendation chat message",
		[]ai.ChatMessage{{Role: "user", Message: prompt}},
		&out,
		ai.WithTemperature(0.1),
		ai.WithMaxTokens(200),
	)
	if err != nil {
		logger.Warn("LLM sentiment analysis failed", "err", err)
		return DeepSentiment{}
	}
	return out
}
