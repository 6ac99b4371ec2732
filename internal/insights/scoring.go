package insights

import (
	"sort"
	"strings"

	"github.com/craftmart/storefront/internal/store"
)

// categoryKeywords maps catalog categories to the vocabulary shoppers use
// for them. A query word from a category's vocabulary boosts products in
// that category.
var categoryKeywords = map[string][]string{
	"pottery":  {"pottery", "clay", "ceramic", "terracotta", "vase", "pot", "bowl"},
	"textiles": {"textile", "fabric", "scarf", "silk", "cotton", "weave", "shawl"},
	"jewelry":  {"jewelry", "jewellery", "necklace", "earring", "ring", "bracelet", "silver", "bead"},
	"wood":     {"wood", "wooden", "carved", "carving", "teak", "sandalwood"},
	"basket":   {"basket", "woven", "wicker", "cane", "bamboo"},
}

const (
	phraseInNameWeight        = 10
	phraseInDescriptionWeight = 5
	wordInNameWeight          = 3
	wordInDescriptionWeight   = 1
	categoryAffinityWeight    = 4
	ratingWeight              = 0.5
)

// scoreProduct rates how well a product matches the query. Zero means no
// match at all.
func scoreProduct(p store.Product, phrase string, words []string, affinities map[string]bool) float64 {
	name := strings.ToLower(p.Name)
	desc := strings.ToLower(p.Description)

	var score float64
	if phrase != "" {
		if strings.Contains(name, phrase) {
			score += phraseInNameWeight
		}
		if strings.Contains(desc, phrase) {
			score += phraseInDescriptionWeight
		}
	}
	for _, w := range words {
		if strings.Contains(name, w) {
			score += wordInNameWeight
		}
		if strings.Contains(desc, w) {
			score += wordInDescriptionWeight
		}
	}
	if affinities[strings.ToLower(p.Category)] {
		score += categoryAffinityWeight
	}
	if score > 0 {
		score += p.RatingAverage * ratingWeight
	}
	return score
}

// queryAffinities returns the categories whose vocabulary overlaps the query words.
func queryAffinities(words []string) map[string]bool {
	out := map[string]bool{}
	for category, vocab := range categoryKeywords {
		for _, kw := range vocab {
			for _, w := range words {
				if w == kw {
					out[category] = true
				}
			}
		}
	}
	return out
}

// ScoredProduct pairs a product with its relevance score.
type ScoredProduct struct {
	Product store.Product `json:"product"`
	Score   float64       `json:"score"`
}

// rank scores every product and returns the top n matches, ties broken by id
// for deterministic output.
func rank(products []store.Product, query string, n int) []ScoredProduct {
	phrase := strings.ToLower(strings.TrimSpace(query))
	words := strings.Fields(phrase)
	affinities := queryAffinities(words)

	var scored []ScoredProduct
	for _, p := range products {
		if s := scoreProduct(p, phrase, words, affinities); s > 0 {
			scored = append(scored, ScoredProduct{Product: p, Score: s})
		}
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Product.ID < scored[j].Product.ID
	})
	if len(scored) > n {
		scored = scored[:n]
	}
	return scored
}
