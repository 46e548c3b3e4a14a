// Package score computes name similarity for fuzzy claimant matching.
package score

import (
	"time"

	"github.com/masonvector/masonvector/internal/cache"
	"github.com/masonvector/masonvector/internal/normalize"
)

// Similarity returns 1 - levenshtein/max(len) over the normalised forms of a
// and b, measured in runes. It is 0 when either normalised name is empty and
// 1 when they are equal. The result is symmetric and lies in [0, 1].
func Similarity(a, b string) float64 {
	return ratio(normalize.Name(a), normalize.Name(b))
}

func ratio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	ra, rb := []rune(a), []rune(b)
	maxLen := max(len(ra), len(rb))
	return 1 - float64(levenshteinRunes(ra, rb))/float64(maxLen)
}

// Scorer is a configurable name scorer. The zero value behaves exactly like
// Similarity. A Scorer is safe for concurrent use when its cache is.
type Scorer struct {
	foldAccents bool
	cache       cache.Cache
	ttl         time.Duration
}

// Option configures a Scorer
type Option func(*Scorer)

// WithAccentFolding strips combining marks before comparing
func WithAccentFolding(fold bool) Option {
	return func(s *Scorer) { s.foldAccents = fold }
}

// WithCache memoises scores for normalised name pairs
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Scorer) {
		s.cache = c
		s.ttl = ttl
	}
}

// NewScorer creates a new scorer
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Normalize returns the form of name that Score compares
func (s *Scorer) Normalize(name string) string {
	if s != nil && s.foldAccents {
		return normalize.FoldedName(name)
	}
	return normalize.Name(name)
}

// Score returns the similarity of two raw names
func (s *Scorer) Score(a, b string) float64 {
	return s.ScoreNormalized(s.Normalize(a), s.Normalize(b))
}

// ScoreNormalized scores two names already passed through Normalize.
// Callers comparing one candidate against a corpus use this to avoid
// re-normalising the candidate for every entity.
func (s *Scorer) ScoreNormalized(a, b string) float64 {
	if s == nil || s.cache == nil || a == "" || b == "" || a == b {
		return ratio(a, b)
	}

	key := cache.PairKey(a, b)
	if v, ok := s.cache.Get(key); ok {
		return v
	}

	v := ratio(a, b)
	_ = s.cache.Set(key, v, s.ttl)
	return v
}
