package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/masonvector/masonvector/internal/ingest"
	"github.com/masonvector/masonvector/internal/model"
	"github.com/masonvector/masonvector/internal/pipeline"
)

var (
	dedupeExisting string
	dedupeDB       string
	dedupeSelf     bool
	noReview       bool
	reviewAt       float64
	workers        int
	outJSON        string
	outMD          string
	commit         bool
	dedupeTimeout  time.Duration
)

// dedupeCmd represents the dedupe command
var dedupeCmd = &cobra.Command{
	Use:   "dedupe <incoming>",
	Short: "Split an incoming batch into duplicates and fresh records",
	Long: `Dedupe reads a batch of claimant records (CSV, JSON or YAML) and:
- Drops rows whose name, date of birth and state match an existing
  claimant or an earlier row of the same batch
- Reviews the remaining fresh rows against the corpus by email, claim id
  and name similarity, flagging likely near-duplicates
- Optionally commits the unflagged fresh rows to a SQLite corpus

Example:
  masonvector dedupe incoming.csv --existing corpus.csv
  masonvector dedupe incoming.csv --self --json report.json
  masonvector dedupe incoming.json --db claims.db --commit --md report.md`,
	Args: cobra.ExactArgs(1),
	RunE: runDedupe,
}

func init() {
	rootCmd.AddCommand(dedupeCmd)

	// Corpus flags
	dedupeCmd.Flags().StringVar(&dedupeExisting, "existing", "", "existing claimants file (CSV, JSON or YAML)")
	dedupeCmd.Flags().StringVar(&dedupeDB, "db", "", "SQLite claimant corpus (default: store.path from config)")
	dedupeCmd.Flags().BoolVar(&dedupeSelf, "self", false, "deduplicate within the incoming batch only")

	// Review flags
	dedupeCmd.Flags().BoolVar(&noReview, "no-review", false, "skip fuzzy review of fresh records")
	dedupeCmd.Flags().Float64Var(&reviewAt, "threshold", 0.85, "name similarity threshold for review, in (0,1]")
	dedupeCmd.Flags().IntVar(&workers, "workers", 0, "review workers (default: concurrency.workers from config)")

	// Output flags
	dedupeCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	dedupeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	dedupeCmd.Flags().BoolVar(&commit, "commit", false, "insert unflagged fresh records into the --db corpus")
	dedupeCmd.Flags().DurationVar(&dedupeTimeout, "timeout", 10*time.Minute, "overall dedupe timeout")
}

func runDedupe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), dedupeTimeout)
	defer cancel()

	// Build configuration from flags
	cfg := *appConfig
	if cmd.Flags().Changed("threshold") {
		cfg.Match.PotentialThreshold = reviewAt
	}
	if cmd.Flags().Changed("workers") {
		cfg.Concurrency.Workers = workers
	}
	if noReview {
		cfg.Match.Review = false
	}
	if dedupeDB != "" {
		cfg.Store.Path = dedupeDB
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if commit && cfg.Store.Path == "" {
		return fmt.Errorf("--commit needs a corpus database (--db or store.path)")
	}
	// Self mode never compares against the corpus, so its fresh rows may
	// already be stored
	if commit && dedupeSelf {
		return fmt.Errorf("--commit cannot be combined with --self: rows are not checked against the corpus")
	}

	incoming, err := ingest.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read incoming: %w", err)
	}
	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "✓ Read %d incoming records from %s\n", len(incoming), args[0])
	}

	existing, err := loadCorpus(ctx, dedupeExisting, cfg.Store.Path)
	if err != nil {
		return err
	}
	defer func() { _ = existing.Close() }()

	p := pipeline.NewPipeline(&cfg, logger)
	report, err := p.Run(ctx, pipeline.Input{
		Incoming: incoming,
		Existing: existing.records,
		Source:   args[0],
		Corpus:   existing.label,
		Self:     dedupeSelf,
	})
	if err != nil {
		return fmt.Errorf("dedupe failed: %w", err)
	}

	if commit {
		inserted, err := existing.store.Insert(ctx, unflagged(report))
		if err != nil {
			return fmt.Errorf("commit failed: %w", err)
		}
		report.Committed = len(inserted)
		if cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "✓ Committed %d records to %s\n", len(inserted), existing.store.Path())
		}
	}

	// Render outputs
	if err := p.RenderReport(report, outJSON, outMD, cfg.Output.Verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}

// unflagged returns the fresh records nobody needs to look at first
func unflagged(report *model.Report) []model.Claimant {
	flagged := make(map[int]bool, len(report.Reviews))
	for _, r := range report.Reviews {
		flagged[r.Row] = true
	}
	out := make([]model.Claimant, 0, len(report.Fresh))
	for i, c := range report.Fresh {
		if !flagged[i] {
			out = append(out, c)
		}
	}
	return out
}
