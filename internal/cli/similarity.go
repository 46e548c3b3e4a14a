package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/masonvector/masonvector/internal/score"
)

// similarityCmd represents the similarity command
var similarityCmd = &cobra.Command{
	Use:   "similarity <name> <name>",
	Short: "Print the similarity score of two names",
	Long: `Similarity normalizes both names (case, punctuation, whitespace) and
prints 1 - editDistance / longerLength, a score in [0, 1].

Example:
  masonvector similarity "John Smith" "Jon Smyth"
  masonvector similarity "O'Brien, Mary" "mary obrien" -v`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		scorer := score.NewScorer(score.WithAccentFolding(appConfig.Match.FoldAccents))
		out := cmd.OutOrStdout()

		if appConfig.Output.Verbose {
			a, b := scorer.Normalize(args[0]), scorer.Normalize(args[1])
			fmt.Fprintf(out, "normalized: %q %q\n", a, b)
			fmt.Fprintf(out, "distance:   %d\n", score.Levenshtein(a, b))
		}
		fmt.Fprintf(out, "%.4f\n", scorer.Score(args[0], args[1]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(similarityCmd)
}
