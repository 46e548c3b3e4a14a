package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/masonvector/masonvector/internal/cache"
	"github.com/masonvector/masonvector/internal/match"
	"github.com/masonvector/masonvector/internal/model"
	"github.com/masonvector/masonvector/internal/score"
	"github.com/masonvector/masonvector/internal/worker"
)

// Pipeline orchestrates one dedupe run: exact partition, then fuzzy review
// of the fresh rows against the corpus
type Pipeline struct {
	best     *match.Matcher // single-candidate lookups
	review   *match.Matcher // batch review
	reviewer *worker.Reviewer
	renderer *Renderer
	config   *model.Config
	logger   *zap.Logger
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}

	scorerOpts := []score.Option{score.WithAccentFolding(cfg.Match.FoldAccents)}
	if cfg.Cache.Enabled {
		ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
		scorerOpts = append(scorerOpts, score.WithCache(cache.NewMemoryCache(ttl, 10*time.Minute), ttl))
	}
	scorer := score.NewScorer(scorerOpts...)

	review := match.NewMatcher(match.WithThreshold(cfg.Match.PotentialThreshold), match.WithScorer(scorer))

	return &Pipeline{
		best:     match.NewMatcher(match.WithThreshold(cfg.Match.BestThreshold), match.WithScorer(scorer)),
		review:   review,
		reviewer: worker.NewReviewer(review, cfg.Concurrency.Workers, logger),
		renderer: NewRenderer(cfg.Output.IncludeRecords),
		config:   cfg,
		logger:   logger,
	}
}

// Input is one batch to deduplicate
type Input struct {
	Incoming []model.Claimant
	Existing []model.Claimant
	Source   string // Incoming file, for the report
	Corpus   string // Existing file or store path, for the report
	Self     bool   // Ignore Existing and dedupe within Incoming only
}

// Run deduplicates the batch and builds a report
func (p *Pipeline) Run(ctx context.Context, in Input) (*model.Report, error) {
	start := time.Now()

	// 1. Exact partition
	mode := model.ModeAgainstCorpus
	existing := in.Existing
	if in.Self {
		mode = model.ModeSelf
		existing = nil
	}
	partition := match.FindDuplicates(in.Incoming, existing)

	p.logger.Info("exact partition",
		zap.Int("incoming", len(in.Incoming)),
		zap.Int("existing", len(existing)),
		zap.Int("duplicates", len(partition.Duplicates)),
		zap.Int("fresh", len(partition.Fresh)))

	report := &model.Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Source:      in.Source,
		Corpus:      in.Corpus,
		Mode:        mode,
		Duplicates:  partition.Duplicates,
		Fresh:       partition.Fresh,
		Counts: model.Counts{
			Incoming:   len(in.Incoming),
			Existing:   len(existing),
			Duplicates: len(partition.Duplicates),
			Fresh:      len(partition.Fresh),
		},
	}

	// 2. Fuzzy review of fresh rows; exact duplicates need no second look
	if p.config.Match.Review && len(existing) > 0 && len(partition.Fresh) > 0 {
		results := p.reviewer.Review(ctx, partition.Fresh, existing)
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("review: %w", err)
		}

		for _, r := range worker.Flagged(results) {
			report.Reviews = append(report.Reviews, model.Review{
				Row:        r.Index,
				Claimant:   r.Row,
				Candidates: r.Matches,
			})
		}
		report.Counts.Flagged = len(report.Reviews)
		report.Threshold = p.review.Threshold()
	}

	p.logger.Info("dedupe run complete",
		zap.String("run_id", report.RunID),
		zap.Int("flagged", report.Counts.Flagged),
		zap.Duration("took", time.Since(start)))

	return report, nil
}

// FindDuplicate looks up the best corpus match for a single candidate
func (p *Pipeline) FindDuplicate(candidate model.Claimant, existing []model.Claimant) (*model.Match, bool) {
	m, ok := p.best.FindDuplicate(candidate, existing)
	if ok {
		p.logger.Debug("candidate matched",
			zap.String("reason", string(m.Reason)),
			zap.Float64("score", m.Score),
			zap.String("entity", m.Entity.ID))
	}
	return m, ok
}

// RenderReport renders the report to the specified outputs
func (p *Pipeline) RenderReport(report *model.Report, jsonPath string, mdPath string, verbose bool) error {
	// Render JSON
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	// Render Markdown
	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	// Print summary to stdout
	p.renderer.RenderSummary(os.Stdout, report)

	return nil
}

// PotentialDuplicates lists every corpus entity the candidate may duplicate,
// using the review threshold
func (p *Pipeline) PotentialDuplicates(candidate model.Claimant, existing []model.Claimant) []model.Match {
	return p.review.FindPotentialDuplicates(candidate, existing)
}
