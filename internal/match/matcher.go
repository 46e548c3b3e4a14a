package match

import (
	"github.com/masonvector/masonvector/internal/model"
	"github.com/masonvector/masonvector/internal/normalize"
	"github.com/masonvector/masonvector/internal/score"
)

const (
	// DefaultBestThreshold is the fuzzy acceptance score for single-candidate lookups
	DefaultBestThreshold = 0.8
	// DefaultPotentialThreshold is the fuzzy acceptance score for batch review
	DefaultPotentialThreshold = 0.85

	// scores equal to the threshold in exact arithmetic must be accepted
	thresholdTolerance = 1e-9
)

// Matcher classifies candidates against a corpus of existing claimants.
// A Matcher holds no per-call state and is safe for concurrent use.
type Matcher struct {
	threshold float64
	scorer    *score.Scorer
}

// Option configures a Matcher
type Option func(*Matcher)

// WithThreshold sets the fuzzy acceptance score. Non-positive values are
// ignored and values above 1 are clamped to 1.
func WithThreshold(t float64) Option {
	return func(m *Matcher) {
		if t > 0 {
			m.threshold = min(t, 1)
		}
	}
}

// WithScorer sets the name scorer (accent folding, score cache)
func WithScorer(s *score.Scorer) Option {
	return func(m *Matcher) {
		if s != nil {
			m.scorer = s
		}
	}
}

// NewMatcher creates a matcher. The threshold defaults to DefaultBestThreshold.
func NewMatcher(opts ...Option) *Matcher {
	m := &Matcher{
		threshold: DefaultBestThreshold,
		scorer:    score.NewScorer(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Threshold returns the fuzzy acceptance score
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// FindDuplicate returns the first hit of the cascade email, claim id,
// external id, then best fuzzy name match at or above threshold.
// It returns false when nothing matched.
func (m *Matcher) FindDuplicate(candidate model.Claimant, existing []model.Claimant) (*model.Match, bool) {
	if hit, ok := findIdent(normalize.Ident(candidate.Email), existing, emailOf, model.ReasonEmail); ok {
		return hit, true
	}
	if hit, ok := findIdent(normalize.Ident(candidate.ClaimID), existing, claimIDOf, model.ReasonClaimID); ok {
		return hit, true
	}
	if hit, ok := findIdent(normalize.Ident(candidate.ExternalID), existing, externalIDOf, model.ReasonExternalID); ok {
		return hit, true
	}

	name := m.scorer.Normalize(candidate.Name)
	if name == "" {
		return nil, false
	}

	bestIdx, bestScore := -1, 0.0
	for i, e := range existing {
		s := m.scorer.ScoreNormalized(name, m.scorer.Normalize(e.Name))
		if s > bestScore {
			bestIdx, bestScore = i, s
		}
	}

	if bestIdx < 0 || !m.accepts(bestScore) {
		return nil, false
	}

	return &model.Match{Entity: existing[bestIdx], Reason: model.ReasonName, Score: bestScore}, true
}

// FindPotentialDuplicates returns every corpus entity matching row by email,
// claim id, or fuzzy name at or above threshold, in corpus order. Each match
// carries the reason of the first strategy that hit.
func (m *Matcher) FindPotentialDuplicates(row model.Claimant, corpus []model.Claimant) []model.Match {
	email := normalize.Ident(row.Email)
	claimID := normalize.Ident(row.ClaimID)
	name := m.scorer.Normalize(row.Name)

	matches := []model.Match{}
	for _, e := range corpus {
		switch {
		case email != "" && email == normalize.Ident(e.Email):
			matches = append(matches, model.Match{Entity: e, Reason: model.ReasonEmail, Score: 1})
		case claimID != "" && claimID == normalize.Ident(e.ClaimID):
			matches = append(matches, model.Match{Entity: e, Reason: model.ReasonClaimID, Score: 1})
		case name != "":
			if s := m.scorer.ScoreNormalized(name, m.scorer.Normalize(e.Name)); m.accepts(s) {
				matches = append(matches, model.Match{Entity: e, Reason: model.ReasonName, Score: s})
			}
		}
	}

	return matches
}

func (m *Matcher) accepts(s float64) bool {
	return s > 0 && s+thresholdTolerance >= m.threshold
}

func findIdent(want string, existing []model.Claimant, field func(model.Claimant) string, reason model.Reason) (*model.Match, bool) {
	if want == "" {
		return nil, false
	}
	for _, e := range existing {
		if normalize.Ident(field(e)) == want {
			return &model.Match{Entity: e, Reason: reason, Score: 1}, true
		}
	}
	return nil, false
}

func emailOf(c model.Claimant) string      { return c.Email }
func claimIDOf(c model.Claimant) string    { return c.ClaimID }
func externalIDOf(c model.Claimant) string { return c.ExternalID }

// FindDuplicate runs the best-match cascade with DefaultBestThreshold
func FindDuplicate(candidate model.Claimant, existing []model.Claimant) (*model.Match, bool) {
	return NewMatcher().FindDuplicate(candidate, existing)
}

// FindPotentialDuplicates runs the all-matches query. A threshold <= 0 means
// DefaultPotentialThreshold.
func FindPotentialDuplicates(row model.Claimant, corpus []model.Claimant, threshold float64) []model.Match {
	if threshold <= 0 {
		threshold = DefaultPotentialThreshold
	}
	return NewMatcher(WithThreshold(threshold)).FindPotentialDuplicates(row, corpus)
}
