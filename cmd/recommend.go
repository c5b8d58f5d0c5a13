package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"revue/internal/models"
)

var recommendLimit int

// recommendCmd produces hybrid recommendations for a user.
var recommendCmd = &cobra.Command{
	Use:   "recommend <user-id>",
	Short: "Recommend movies for a user",
	Long: `Blends overview similarity to the user's liked movies, a baseline
collaborative estimate and sentiment affinity into one score per unseen
movie, and prints the top matches.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		userID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user ID: %s", args[0])
		}

		recs, err := appInstance.RecommendService.RecommendForUser(cmd.Context(), userID, recommendLimit)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Println("No recommendations available.")
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Rank", "ID", "Title", "Score"})
		table.SetBorder(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for i, r := range recs {
			table.Append([]string{
				strconv.Itoa(i + 1),
				strconv.FormatInt(r.MovieID, 10),
				r.Title,
				fmt.Sprintf("%.4f", r.Score),
			})
		}
		table.Render()
		return nil
	},
}

var rateCmd = &cobra.Command{
	Use:   "rate <user-id> <movie-id> <rating>",
	Short: "Record a user's rating for a movie",
	Long:  `Records a rating between 0.5 and 5. Re-rating a movie replaces the old value.`,
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		userID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user ID: %s", args[0])
		}
		movieID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid movie ID: %s", args[1])
		}
		value, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid rating: %s", args[2])
		}

		rating := &models.Rating{UserID: userID, MovieID: movieID, Rating: value}
		if err := appInstance.RatingStore.AddRating(cmd.Context(), rating); err != nil {
			return err
		}
		fmt.Printf("Recorded rating %.1f for movie %d by user %d.\n", value, movieID, userID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd, rateCmd)
	recommendCmd.Flags().IntVarP(&recommendLimit, "limit", "l", 10, "Number of recommendations")
}
