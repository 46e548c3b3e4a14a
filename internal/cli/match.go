package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/masonvector/masonvector/internal/model"
	"github.com/masonvector/masonvector/internal/pipeline"
)

var (
	matchName       string
	matchEmail      string
	matchClaimID    string
	matchExternalID string
	matchCorpus     string
	matchDB         string
	matchThreshold  float64
	matchAll        bool
)

// matchCmd represents the match command
var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Look up one candidate claimant in the corpus",
	Long: `Match checks a single candidate against the corpus, trying email,
claim id and external id before falling back to the most similar name.

With --all every corpus entry matching by email, claim id or name
similarity is listed, in corpus order.

Example:
  masonvector match --name "Jon Smith" --corpus corpus.csv
  masonvector match --email j.smith@example.com --db claims.db
  masonvector match --name "Jon Smith" --corpus corpus.csv --all`,
	Args: cobra.NoArgs,
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	// Candidate flags
	matchCmd.Flags().StringVar(&matchName, "name", "", "candidate full name")
	matchCmd.Flags().StringVar(&matchEmail, "email", "", "candidate email")
	matchCmd.Flags().StringVar(&matchClaimID, "claim-id", "", "candidate claim id")
	matchCmd.Flags().StringVar(&matchExternalID, "external-id", "", "candidate external id")

	// Corpus flags
	matchCmd.Flags().StringVar(&matchCorpus, "corpus", "", "existing claimants file (CSV, JSON or YAML)")
	matchCmd.Flags().StringVar(&matchDB, "db", "", "SQLite claimant corpus (default: store.path from config)")

	matchCmd.Flags().Float64Var(&matchThreshold, "threshold", 0, "name similarity threshold in (0,1] (default: from config)")
	matchCmd.Flags().BoolVar(&matchAll, "all", false, "list every potential duplicate instead of the best one")
}

func runMatch(cmd *cobra.Command, args []string) error {
	candidate := model.Claimant{
		Name:       matchName,
		Email:      matchEmail,
		ClaimID:    matchClaimID,
		ExternalID: matchExternalID,
	}
	if candidate.Name == "" && candidate.Email == "" && candidate.ClaimID == "" && candidate.ExternalID == "" {
		return fmt.Errorf("nothing to match: set at least one of --name, --email, --claim-id, --external-id")
	}

	cfg := *appConfig
	if cmd.Flags().Changed("threshold") {
		cfg.Match.BestThreshold = matchThreshold
		cfg.Match.PotentialThreshold = matchThreshold
	}
	if matchDB != "" {
		cfg.Store.Path = matchDB
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	existing, err := loadCorpus(context.Background(), matchCorpus, cfg.Store.Path)
	if err != nil {
		return err
	}
	defer func() { _ = existing.Close() }()

	p := pipeline.NewPipeline(&cfg, logger)
	out := cmd.OutOrStdout()

	if matchAll {
		matches := p.PotentialDuplicates(candidate, existing.records)
		if len(matches) == 0 {
			fmt.Fprintln(out, "no duplicate")
			return nil
		}
		for _, m := range matches {
			printMatch(out, m)
		}
		return nil
	}

	m, ok := p.FindDuplicate(candidate, existing.records)
	if !ok {
		fmt.Fprintln(out, "no duplicate")
		return nil
	}
	printMatch(out, *m)
	return nil
}

func printMatch(w io.Writer, m model.Match) {
	id := m.Entity.ID
	if id == "" {
		id = "-"
	}
	fmt.Fprintf(w, "%s\t%s\t%s\t%.4f\n", m.Reason, id, m.Entity.Name, m.Score)
}
