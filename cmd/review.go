package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"revue/internal/ingest"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Manage movie reviews",
}

var reviewAddFile string

var reviewAddCmd = &cobra.Command{
	Use:   "add <movie-id> [text]",
	Short: "Attach a review to a movie",
	Long: `Stores a review for the movie and scores it immediately. The review text
can be given inline or read from a .txt or .html file with --file. Adding a
review also queues a re-aggregation of the movie's verdict.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		movieID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid movie ID: %s", args[0])
		}

		source := "typed"
		var body string
		if reviewAddFile != "" {
			res, err := ingest.FromFile(reviewAddFile)
			if err != nil {
				return fmt.Errorf("read review file: %w", err)
			}
			body = res.Body
			source = "file"
		} else {
			if len(args) < 2 {
				return fmt.Errorf("provide review text or use --file")
			}
			body = strings.Join(args[1:], " ")
		}

		review, err := appInstance.ReviewService.AddReview(cmd.Context(), movieID, body, source)
		if err != nil {
			return err
		}

		fmt.Printf("Added review %d to movie %d.\n", review.ID, movieID)
		if review.Label != nil {
			fmt.Printf("Verdict: %s (%d stars, p=%.4f)\n", labelString(*review.Label), *review.Stars, *review.Probability)
		}
		return nil
	},
}

var (
	reviewImportFile string
	reviewImportDir  string
)

// reviewImportCmd bulk-loads reviews for one movie, either from a single
// file holding blank-line separated reviews or from a directory with one
// review per file.
var reviewImportCmd = &cobra.Command{
	Use:   "import <movie-id>",
	Short: "Import many reviews for a movie at once",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		movieID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid movie ID: %s", args[0])
		}
		if (reviewImportFile == "") == (reviewImportDir == "") {
			return fmt.Errorf("provide exactly one of --file or --dir")
		}

		var bodies []string
		if reviewImportFile != "" {
			res, err := ingest.FromFile(reviewImportFile)
			if err != nil {
				return fmt.Errorf("read bulk review file: %w", err)
			}
			bodies = ingest.SplitReviews(res.Body)
		} else {
			results, err := ingest.FromDir(reviewImportDir)
			if err != nil {
				return fmt.Errorf("read review directory: %w", err)
			}
			for _, res := range results {
				bodies = append(bodies, res.Body)
			}
		}
		if len(bodies) == 0 {
			return fmt.Errorf("no review text found in input")
		}

		imported, failed := 0, 0
		for _, body := range bodies {
			if _, err := appInstance.ReviewService.AddReview(cmd.Context(), movieID, body, "file"); err != nil {
				fmt.Printf("  - %s: %v\n", color.RedString("ERROR"), err)
				failed++
				continue
			}
			imported++
		}
		fmt.Printf("Imported %d reviews for movie %d, %d failed.\n", imported, movieID, failed)
		return nil
	},
}

var reviewListCmd = &cobra.Command{
	Use:   "list <movie-id>",
	Short: "List a movie's reviews",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		movieID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid movie ID: %s", args[0])
		}

		reviews, err := appInstance.ReviewStore.ListReviewsByMovie(cmd.Context(), movieID)
		if err != nil {
			return err
		}
		if len(reviews) == 0 {
			fmt.Println("No reviews found.")
			return nil
		}

		for _, r := range reviews {
			verdict := "unscored"
			if r.Label != nil {
				verdict = fmt.Sprintf("%s (p=%.4f)", labelString(*r.Label), *r.Probability)
			}
			snippet := strings.ReplaceAll(r.Body, "\n", " ")
			if len(snippet) > 100 {
				snippet = snippet[:100] + "..."
			}
			fmt.Printf("ID: %d [%s] %s\n  %s\n", r.ID, r.Source, verdict, snippet)
		}
		fmt.Printf("Displayed %d reviews.\n", len(reviews))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.AddCommand(reviewAddCmd, reviewImportCmd, reviewListCmd)

	reviewAddCmd.Flags().StringVarP(&reviewAddFile, "file", "f", "", "Read review text from a .txt or .html file")
	reviewImportCmd.Flags().StringVarP(&reviewImportFile, "file", "f", "", "Bulk file with one review per blank-line separated block")
	reviewImportCmd.Flags().StringVarP(&reviewImportDir, "dir", "d", "", "Directory with one review per .txt/.html file")
}
