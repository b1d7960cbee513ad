// Package similarity ranks stored passages against a query embedding.
package similarity

import (
	"math"
	"sort"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
)

// Cosine returns the cosine similarity of a and b, or 0 when the vectors
// differ in length or either has zero magnitude.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Ranker keeps the k most similar passages seen so far.
type Ranker struct {
	query []float32
	k     int
	top   []domain.Passage
}

// NewRanker creates a ranker for query keeping at most k passages.
func NewRanker(query []float32, k int) *Ranker {
	return &Ranker{query: query, k: k}
}

// Offer scores a passage and keeps it if it ranks in the top k.
func (r *Ranker) Offer(p domain.Passage, embedding []float32) {
	if r.k <= 0 {
		return
	}
	p.Similarity = Cosine(r.query, embedding)

	if len(r.top) == r.k && p.Similarity <= r.top[len(r.top)-1].Similarity {
		return
	}

	i := sort.Search(len(r.top), func(i int) bool { return r.top[i].Similarity < p.Similarity })
	r.top = append(r.top, domain.Passage{})
	copy(r.top[i+1:], r.top[i:])
	r.top[i] = p

	if len(r.top) > r.k {
		r.top = r.top[:r.k]
	}
}

// Results returns the kept passages, most similar first.
func (r *Ranker) Results() []domain.Passage {
	out := make([]domain.Passage, len(r.top))
	copy(out, r.top)
	return out
}
