package profile

import (
	"fmt"

	"github.com/cinematch/backend/pkg/common"
)

// Node is one vertex of the taste graph, shaped for a D3 force layout.
type Node struct {
	ID        string   `json:"id"`
	Label     string   `json:"label"`
	Type      string   `json:"type"`
	Index     int      `json:"index"`
	Score     float64  `json:"score,omitempty"`
	Year      int      `json:"year,omitempty"`
	PosterURL string   `json:"poster_url,omitempty"`
	Reason    string   `json:"reason,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// Link is one weighted edge of the taste graph.
type Link struct {
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Relation string  `json:"relation"`
	Weight   float64 `json:"weight"`
}

// GraphStats summarizes the graph composition.
type GraphStats struct {
	TotalNodes   int `json:"total_nodes"`
	TotalLinks   int `json:"total_links"`
	MovieCount   int `json:"movie_count"`
	GenreCount   int `json:"genre_count"`
	KeywordCount int `json:"keyword_count"`
}

// Graph is the full visualization payload: the node-link structure
// plus the profile it was derived from.
type Graph struct {
	Nodes   []Node     `json:"nodes"`
	Links   []Link     `json:"links"`
	Profile Snapshot   `json:"profile"`
	Stats   GraphStats `json:"stats"`
}

type graphBuilder struct {
	nodes   []Node
	links   []Link
	nodeIdx map[string]int
}

func (b *graphBuilder) addNode(node Node) {
	if _, exists := b.nodeIdx[node.ID]; exists {
		return
	}
	node.Index = len(b.nodes)
	b.nodeIdx[node.ID] = node.Index
	b.nodes = append(b.nodes, node)
}

func (b *graphBuilder) addLink(source, target, relation string, weight float64) {
	b.links = append(b.links, Link{Source: source, Target: target, Relation: relation, Weight: weight})
}

// BuildGraph assembles the session's taste graph: the user at the
// center, linked to archetypes, preferred genres and moods, the
// recommended movies, and keyword clusters. Movies sharing genres or
// keywords are cross-linked.
func (s *Store) BuildGraph(sessionID string, recommendations []common.RecommendationItem) Graph {
	s.mu.Lock()
	p := s.getOrCreate(sessionID)
	snap := p.snapshot()
	tags := append([]string{}, p.Tags...)
	topGenres := p.GenreAffinity.MostCommon(8)
	topMoods := p.MoodAffinity.MostCommon(5)
	topKeywords := p.KeywordAffinity.MostCommon(10)
	s.mu.Unlock()

	b := &graphBuilder{nodeIdx: map[string]int{}}

	b.addNode(Node{ID: "user", Label: "Tú", Type: "user", Tags: tags})

	for _, tag := range tags {
		id := "tag:" + tag
		b.addNode(Node{ID: id, Label: tag, Type: "archetype"})
		b.addLink("user", id, "es", 2.0)
	}

	for _, g := range topGenres {
		id := "genre:" + g.Name
		b.addNode(Node{ID: id, Label: g.Name, Type: "genre", Score: float64(g.Score)})
		b.addLink("user", id, "prefiere", min(float64(g.Score)/3.0, 3.0))
	}

	for _, m := range topMoods {
		id := "mood:" + m.Name
		b.addNode(Node{ID: id, Label: m.Name, Type: "mood", Score: float64(m.Score)})
		b.addLink("user", id, "busca", min(float64(m.Score)/2.0, 3.0))
	}

	// Movie nodes with their genre and keyword neighborhoods.
	neighborhoods := make(map[string]map[string]struct{})
	var movieIDs []string
	for _, rec := range recommendations {
		movieID := fmt.Sprintf("movie:%d", rec.TMDBID)
		b.addNode(Node{
			ID:        movieID,
			Label:     rec.Title,
			Type:      "movie",
			Year:      rec.Year,
			Score:     rec.Score,
			PosterURL: rec.PosterURL,
			Reason:    rec.Reason,
		})
		if _, seen := neighborhoods[movieID]; seen {
			continue
		}
		movieIDs = append(movieIDs, movieID)
		neighbors := map[string]struct{}{}

		for _, genre := range rec.Genres {
			id := "genre:" + genre
			b.addNode(Node{ID: id, Label: genre, Type: "genre"})
			b.addLink(movieID, id, "pertenece_a", 1.5)
			neighbors[id] = struct{}{}
		}
		for i, kw := range rec.Keywords {
			if i >= 5 {
				break
			}
			id := "keyword:" + kw
			b.addNode(Node{ID: id, Label: kw, Type: "keyword"})
			b.addLink(movieID, id, "trata_de", 1.0)
			neighbors[id] = struct{}{}
		}
		neighborhoods[movieID] = neighbors
	}

	// Movies sharing genres or keywords get a direct edge.
	for i, m1 := range movieIDs {
		for _, m2 := range movieIDs[i+1:] {
			shared := 0
			for n := range neighborhoods[m1] {
				if _, ok := neighborhoods[m2][n]; ok {
					shared++
				}
			}
			if shared > 0 {
				b.addLink(m1, m2, "relacionada", float64(shared)*0.8)
			}
		}
	}

	for _, kw := range topKeywords {
		id := "keyword:" + kw.Name
		b.addNode(Node{ID: id, Label: kw.Name, Type: "keyword", Score: float64(kw.Score)})
		b.addLink("user", id, "interés", min(float64(kw.Score)/2.0, 2.5))
	}

	stats := GraphStats{
		TotalNodes: len(b.nodes),
		TotalLinks: len(b.links),
		MovieCount: len(movieIDs),
	}
	for _, n := range b.nodes {
		switch n.Type {
		case "genre":
			stats.GenreCount++
		case "keyword":
			stats.KeywordCount++
		}
	}

	return Graph{Nodes: b.nodes, Links: b.links, Profile: snap, Stats: stats}
}
