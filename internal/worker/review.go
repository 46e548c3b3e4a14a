package worker

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/masonvector/masonvector/internal/model"
)

// Finder looks up potential corpus duplicates for one row
type Finder interface {
	FindPotentialDuplicates(row model.Claimant, corpus []model.Claimant) []model.Match
}

// ReviewJob checks one incoming row against the corpus
type ReviewJob struct {
	Index  int
	Row    model.Claimant
	Corpus []model.Claimant
	Finder Finder
}

// Execute executes the review job
func (j *ReviewJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &ReviewResult{Index: j.Index, Row: j.Row, Error: err}
	}
	return &ReviewResult{
		Index:   j.Index,
		Row:     j.Row,
		Matches: j.Finder.FindPotentialDuplicates(j.Row, j.Corpus),
	}
}

// ReviewResult represents the result of a review job
type ReviewResult struct {
	Index   int
	Row     model.Claimant
	Matches []model.Match
	Error   error
}

// GetError returns the error from the review result
func (r *ReviewResult) GetError() error {
	return r.Error
}

// Reviewer runs fuzzy duplicate lookups for a batch of rows concurrently
type Reviewer struct {
	finder      Finder
	concurrency int
	logger      *zap.Logger
}

// NewReviewer creates a new batch reviewer
func NewReviewer(finder Finder, concurrency int, logger *zap.Logger) *Reviewer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reviewer{
		finder:      finder,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Review looks up potential duplicates for every row and returns one result
// per row, in row order. Rows not processed before ctx is done carry ctx's
// error.
func (r *Reviewer) Review(ctx context.Context, rows, corpus []model.Claimant) []*ReviewResult {
	if len(rows) == 0 {
		return []*ReviewResult{}
	}

	start := time.Now()
	pool := NewPoolWithContext(ctx, r.concurrency)
	pool.Start()

	for i, row := range rows {
		pool.Submit(&ReviewJob{
			Index:  i,
			Row:    row,
			Corpus: corpus,
			Finder: r.finder,
		})
	}

	results := pool.Wait()

	ordered := make([]*ReviewResult, len(rows))
	for _, result := range results {
		rr := result.(*ReviewResult)
		ordered[rr.Index] = rr
	}

	failed := 0
	for i, rr := range ordered {
		if rr == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			ordered[i] = &ReviewResult{Index: i, Row: rows[i], Error: err}
		}
		if ordered[i].Error != nil {
			failed++
		}
	}

	r.logger.Debug("review complete",
		zap.Int("rows", len(rows)),
		zap.Int("corpus", len(corpus)),
		zap.Int("failed", failed),
		zap.Duration("took", time.Since(start)))

	return ordered
}

// Flagged returns the successful results that found at least one match,
// sorted by row index
func Flagged(results []*ReviewResult) []*ReviewResult {
	var flagged []*ReviewResult
	for _, r := range results {
		if r.Error == nil && len(r.Matches) > 0 {
			flagged = append(flagged, r)
		}
	}
	sort.Slice(flagged, func(i, j int) bool { return flagged[i].Index < flagged[j].Index })
	return flagged
}
