package profile

import (
	"math"
	"regexp"
	"sort"
	"sync"

	"github.com/cinematch/backend/pkg/common"
	"github.com/cinematch/backend/pkg/logger"
)

// Counter accumulates affinity scores per name.
type Counter map[string]int

// MostCommon returns up to n entries ordered by score, highest first.
// Ties break alphabetically so the order is stable.
func (c Counter) MostCommon(n int) []CounterEntry {
	entries := make([]CounterEntry, 0, len(c))
	for name, score := range c {
		entries = append(entries, CounterEntry{Name: name, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Name < entries[j].Name
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// CounterEntry is one named score in a Counter.
type CounterEntry struct {
	Name  string
	Score int
}

func names(entries []CounterEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func toMap(entries []CounterEntry) map[string]int {
	out := make(map[string]int, len(entries))
	for _, e := range entries {
		out[e.Name] = e.Score
	}
	return out
}

// UserProfile is the dynamic taste profile accumulated from a
// session's interactions.
type UserProfile struct {
	GenreAffinity      Counter
	KeywordAffinity    Counter
	MoodAffinity       Counter
	EraPreference      Counter
	DirectorAffinity   Counter
	CountryPreference  Counter
	LikedMovies        []int
	DislikedMovies     []int
	InteractionCount   int
	AvgPreferredRating float64
	Tags               []string
}

func newUserProfile() *UserProfile {
	return &UserProfile{
		GenreAffinity:      Counter{},
		KeywordAffinity:    Counter{},
		MoodAffinity:       Counter{},
		EraPreference:      Counter{},
		DirectorAffinity:   Counter{},
		CountryPreference:  Counter{},
		LikedMovies:        []int{},
		DislikedMovies:     []int{},
		AvgPreferredRating: 7.0,
		Tags:               []string{},
	}
}

func (p *UserProfile) topGenres(n int) []string {
	return names(p.GenreAffinity.MostCommon(n))
}

func (p *UserProfile) topMoods(n int) []string {
	return names(p.MoodAffinity.MostCommon(n))
}

var genreArchetypes = map[string]string{
	"Ciencia ficción": "Explorador Cósmico",
	"Science Fiction": "Explorador Cósmico",
	"Drama":           "Alma Sensible",
	"Thriller":        "Buscador de Tensión",
	"Comedia":         "Cazador de Risas",
	"Comedy":          "Cazador de Risas",
	"Terror":          "Amante del Miedo",
	"Horror":          "Amante del Miedo",
	"Animación":       "Espíritu Creativo",
	"Animation":       "Espíritu Creativo",
	"Documental":      "Mente Curiosa",
	"Documentary":     "Mente Curiosa",
	"Acción":          "Adicto a la Adrenalina",
	"Action":          "Adicto a la Adrenalina",
	"Romance":         "Corazón Romántico",
	"Fantasía":        "Soñador Eterno",
	"Fantasy":         "Soñador Eterno",
}

var moodArchetypes = map[string]string{
	"intelectual": "Pensador Profundo",
	"emocional":   "Empático Natural",
	"adrenalina":  "Amante de la Acción",
	"humor":       "Espíritu Alegre",
	"oscuro":      "Explorador Oscuro",
	"nostálgico":  "Viajero del Tiempo",
	"romántico":   "Corazón Abierto",
	"familiar":    "Alma Familiar",
}

// computeArchetypeTags derives up to five archetype tags from the top
// genres and moods plus activity milestones.
func (p *UserProfile) computeArchetypeTags() {
	tags := []string{}

	for _, g := range p.topGenres(3) {
		if tag, ok := genreArchetypes[g]; ok {
			tags = append(tags, tag)
		}
	}
	for _, m := range p.topMoods(2) {
		tag, ok := moodArchetypes[m]
		if !ok {
			continue
		}
		duplicate := false
		for _, existing := range tags {
			if existing == tag {
				duplicate = true
				break
			}
		}
		if !duplicate {
			tags = append(tags, tag)
		}
	}

	if p.InteractionCount > 5 {
		tags = append(tags, "Cinéfilo Activo")
	}
	if len(p.LikedMovies) > 8 {
		tags = append(tags, "Coleccionista")
	}

	if len(tags) > 5 {
		tags = tags[:5]
	}
	p.Tags = tags
}

// Snapshot is the JSON-facing view of a profile, truncated to the
// most relevant entries.
type Snapshot struct {
	GenreAffinity      map[string]int `json:"genre_affinity"`
	KeywordAffinity    map[string]int `json:"keyword_affinity"`
	MoodAffinity       map[string]int `json:"mood_affinity"`
	EraPreference      map[string]int `json:"era_preference"`
	DirectorAffinity   map[string]int `json:"director_affinity"`
	CountryPreference  map[string]int `json:"country_preference"`
	LikedMovies        []int          `json:"liked_movies"`
	DislikedMovies     []int          `json:"disliked_movies"`
	InteractionCount   int            `json:"interaction_count"`
	AvgPreferredRating float64        `json:"avg_preferred_rating"`
	ArchetypeTags      []string       `json:"archetype_tags"`
}

func (p *UserProfile) snapshot() Snapshot {
	return Snapshot{
		GenreAffinity:      toMap(p.GenreAffinity.MostCommon(10)),
		KeywordAffinity:    toMap(p.KeywordAffinity.MostCommon(15)),
		MoodAffinity:       toMap(p.MoodAffinity.MostCommon(5)),
		EraPreference:      toMap(p.EraPreference.MostCommon(3)),
		DirectorAffinity:   toMap(p.DirectorAffinity.MostCommon(5)),
		CountryPreference:  toMap(p.CountryPreference.MostCommon(5)),
		LikedMovies:        lastInts(p.LikedMovies, 20),
		DislikedMovies:     lastInts(p.DislikedMovies, 10),
		InteractionCount:   p.InteractionCount,
		AvgPreferredRating: math.Round(p.AvgPreferredRating*10) / 10,
		ArchetypeTags:      append([]string{}, p.Tags...),
	}
}

func lastInts(s []int, n int) []int {
	if len(s) > n {
		s = s[len(s)-n:]
	}
	return append([]int{}, s...)
}

// Message detectors. The Spanish stems deliberately skip the trailing
// word boundary so inflected forms still match.
var positivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(me encant|genial\b|perfecto\b|buena\b|excelente\b|incre[íi]ble|gran\b|grande\b|fant[áa]stic|me gust)`),
	regexp.MustCompile(`(?i)\b(loved?|great|amazing|awesome|perfect|fantastic|excellent|wonderful)\b`),
	regexp.MustCompile(`(?i)\b(s[íi]\b|claro\b|exacto\b|vale\b|por supuesto|definitivamente)`),
}

var negativePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(no me gust|horrible\b|mala\b|aburrida\b|no quiero|nada de\b|ni hablar)`),
	regexp.MustCompile(`(?i)\b(hated?|boring|terrible|awful|dislikes?|worst|overrated)\b`),
	regexp.MustCompile(`(?i)\b(nope?\b|never\b|jam[áa]s|nah\b|para nada)`),
}

type namedPattern struct {
	name    string
	pattern *regexp.Regexp
}

var moodPatterns = []namedPattern{
	{"intelectual", regexp.MustCompile(`(?i)\b(pens(ar|ativo)|reflexi[óo]n|filos[óo]f|profund[oa]|cerebral|complej[oa]|think|thought)`)},
	{"emocional", regexp.MustCompile(`(?i)\b(llor(ar|é)|emoci[óo]n|conmov|sentiment|triste|heart|cry|tears|feel)`)},
	{"adrenalina", regexp.MustCompile(`(?i)\b(acci[óo]n|adrenalina|explosion|tir[oa]s?\b|pelea|fight|action|thrilling|chase)`)},
	{"humor", regexp.MustCompile(`(?i)\b(risa|gracioso|comedia|humor|funny|laugh|hilarious|comedy)`)},
	{"oscuro", regexp.MustCompile(`(?i)\b(oscur[oa]|dark|noir|perturbad|inquietante|macabr|creepy|disturbing)`)},
	{"nostálgico", regexp.MustCompile(`(?i)\b(nostalgi|retro|cl[áa]sic|vintage|old.?school|classic|remember)`)},
	{"romántico", regexp.MustCompile(`(?i)\b(rom[áa]ntic|amor\b|love|pareja|couple|relationship|passion)`)},
	{"familiar", regexp.MustCompile(`(?i)\b(famili|niños|kids|infantil|child|family|todos\b|all.?ages)`)},
}

var eraPatterns = []namedPattern{
	{"clásico", regexp.MustCompile(`(?i)\b(cl[áa]sic|classic|antigua|old\b)`)},
	{"80s", regexp.MustCompile(`(?i)\b(80s?\b|ochenta|eighties)`)},
	{"90s", regexp.MustCompile(`(?i)\b(90s?\b|noventa|nineties)`)},
	{"2000s", regexp.MustCompile(`(?i)\b(2000s?\b|dos.?mil)`)},
	{"reciente", regexp.MustCompile(`(?i)\b(reciente|nueva\b|actual\b|recent|new\b|latest|202[0-6])`)},
}

// messageAnalysis is the regex-derived reading of one user message.
type messageAnalysis struct {
	sentiment     string
	detectedMoods []string
	detectedEras  []string
	positiveScore int
	negativeScore int
}

// analyzeMessage scores a user message against the preference
// detectors.
func analyzeMessage(text string) messageAnalysis {
	analysis := messageAnalysis{sentiment: "neutral"}

	for _, p := range positivePatterns {
		analysis.positiveScore += len(p.FindAllString(text, -1))
	}
	for _, p := range negativePatterns {
		analysis.negativeScore += len(p.FindAllString(text, -1))
	}
	if analysis.positiveScore > analysis.negativeScore {
		analysis.sentiment = "positive"
	} else if analysis.negativeScore > analysis.positiveScore {
		analysis.sentiment = "negative"
	}

	for _, mp := range moodPatterns {
		if mp.pattern.MatchString(text) {
			analysis.detectedMoods = append(analysis.detectedMoods, mp.name)
		}
	}
	for _, ep := range eraPatterns {
		if ep.pattern.MatchString(text) {
			analysis.detectedEras = append(analysis.detectedEras, ep.name)
		}
	}
	return analysis
}

// Store keeps one UserProfile per session in memory. All methods are
// safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	profiles map[string]*UserProfile
}

// NewStore creates an empty profile store.
func NewStore() *Store {
	return &Store{profiles: make(map[string]*UserProfile)}
}

func (s *Store) getOrCreate(sessionID string) *UserProfile {
	p, ok := s.profiles[sessionID]
	if !ok {
		p = newUserProfile()
		s.profiles[sessionID] = p
	}
	return p
}

// Snapshot returns the JSON view of a session's profile. The second
// return is false when no profile exists yet.
func (s *Store) Snapshot(sessionID string) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[sessionID]
	if !ok {
		return Snapshot{}, false
	}
	return p.snapshot(), true
}

// Delete removes a session's profile.
func (s *Store) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, sessionID)
}

// UpdateFromInteraction folds one completed exchange into the
// session's profile: regex signals from the raw message, explicit
// entity mentions, implicit feedback from the films shown, and the
// recommended movie IDs.
func (s *Store) UpdateFromInteraction(
	sessionID, userQuery string,
	entities *common.ExtractedEntities,
	recommendations []common.RecommendationItem,
	enrichedGenres, enrichedKeywords []string,
) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.getOrCreate(sessionID)
	p.InteractionCount++

	analysis := analyzeMessage(userQuery)
	for _, mood := range analysis.detectedMoods {
		p.MoodAffinity[mood] += 2
	}
	for _, era := range analysis.detectedEras {
		p.EraPreference[era] += 2
	}

	if entities != nil {
		// An explicit mention is a strong signal.
		for _, g := range entities.Genres {
			p.GenreAffinity[g] += 3
		}
		for _, kw := range entities.Keywords {
			p.KeywordAffinity[kw] += 2
		}
		if entities.Mood != "" {
			for _, mp := range moodPatterns {
				if mp.pattern.MatchString(entities.Mood) {
					p.MoodAffinity[mp.name]++
				}
			}
		}
		if entities.Era != "" {
			p.EraPreference[entities.Era]++
		}
	}

	// The user saw these films; count them as weak implicit feedback.
	for _, g := range enrichedGenres {
		p.GenreAffinity[g]++
	}
	for _, kw := range enrichedKeywords {
		p.KeywordAffinity[kw]++
	}

	for _, rec := range recommendations {
		p.LikedMovies = append(p.LikedMovies, rec.TMDBID)
		if rec.Score >= 8 {
			p.AvgPreferredRating = p.AvgPreferredRating*0.7 + rec.Score*0.3
		}
	}

	p.computeArchetypeTags()

	logger.Info("Profile updated",
		"session_id", sessionID,
		"interactions", p.InteractionCount,
		"top_genres", p.topGenres(3),
		"tags", p.Tags,
	)
}
