package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	similarLimit    int
	similarSemantic bool
)

// similarCmd finds movies with overviews similar to the named title.
var similarCmd = &cobra.Command{
	Use:   "similar <title>",
	Short: "Find movies similar to a title",
	Long: `Finds the movies whose overviews are most similar to the named movie's.
By default similarity is lexical (term overlap); --semantic uses stored
overview embeddings instead and requires the vector backend.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		title := args[0]
		limit := similarLimit
		if limit <= 0 {
			limit = appInstance.Config.Similarity.DefaultLimit
		}

		var results []struct {
			id    int64
			title string
			score float64
		}

		if similarSemantic {
			movie, err := appInstance.MovieStore.GetMovieByTitle(cmd.Context(), title)
			if err != nil {
				return fmt.Errorf("movie %q: %w", title, err)
			}
			recs, err := appInstance.RecommendService.SemanticSimilar(cmd.Context(), movie.ID, limit)
			if err != nil {
				return err
			}
			for _, r := range recs {
				results = append(results, struct {
					id    int64
					title string
					score float64
				}{r.MovieID, r.Title, r.Score})
			}
		} else {
			recs, err := appInstance.RecommendService.SimilarByTitle(cmd.Context(), title, limit)
			if err != nil {
				return err
			}
			for _, r := range recs {
				results = append(results, struct {
					id    int64
					title string
					score float64
				}{r.MovieID, r.Title, r.Score})
			}
		}

		if len(results) == 0 {
			fmt.Printf("No similar movies found for %q.\n", title)
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"ID", "Title", "Similarity"})
		table.SetBorder(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for _, r := range results {
			table.Append([]string{strconv.FormatInt(r.id, 10), r.title, fmt.Sprintf("%.4f", r.score)})
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(similarCmd)
	similarCmd.Flags().IntVarP(&similarLimit, "limit", "l", 0, "Number of results (default from config)")
	similarCmd.Flags().BoolVar(&similarSemantic, "semantic", false, "Use overview embeddings instead of term overlap")
}
