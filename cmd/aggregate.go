package cmd

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"revue/internal/ingest"
	"revue/internal/models"
)

var aggregateFiles []string

// aggregateCmd combines review verdicts, either for a stored movie or for
// ad-hoc review files.
var aggregateCmd = &cobra.Command{
	Use:   "aggregate [movie-id]",
	Short: "Combine reviews into one aggregate verdict",
	Long: `With a movie ID, rescores every stored review of the movie and publishes
the aggregate verdict. With --review files, combines the given reviews
without touching the database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		if len(aggregateFiles) > 0 {
			reviews := make([]string, 0, len(aggregateFiles))
			for _, path := range aggregateFiles {
				res, err := ingest.FromFile(path)
				if err != nil {
					return fmt.Errorf("read review file %s: %w", path, err)
				}
				reviews = append(reviews, res.Body)
			}
			verdict, err := appInstance.AnalysisService.AggregateTexts(reviews)
			if err != nil {
				return err
			}
			printVerdict(verdict)
			return nil
		}

		if len(args) != 1 {
			return fmt.Errorf("provide a movie ID or at least one --review file")
		}
		movieID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid movie ID: %s", args[0])
		}

		verdict, err := appInstance.AnalysisService.AggregateMovie(cmd.Context(), movieID)
		if err != nil {
			return err
		}
		printVerdict(*verdict)
		return nil
	},
}

func printVerdict(v models.AggregateVerdict) {
	fmt.Printf("Reviews:   %d (%s %d / %s %d / %s %d)\n",
		v.ReviewCount,
		color.GreenString("positive"), v.PositiveCount,
		color.YellowString("mixed"), v.MixedCount,
		color.RedString("negative"), v.NegativeCount)
	fmt.Printf("Verdict:   %s (%d stars)\n", labelString(v.Label), v.Stars)
	fmt.Printf("Mean:      %.4f\n", v.MeanProbability)
	fmt.Printf("Computed:  %s\n", v.ComputedAt.Format("2006-01-02 15:04:05"))
}

func init() {
	rootCmd.AddCommand(aggregateCmd)
	aggregateCmd.Flags().StringSliceVarP(&aggregateFiles, "review", "r", nil, "Review file to include (repeatable)")
}
