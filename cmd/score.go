package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"revue/internal/highlights"
	"revue/internal/ingest"
	"revue/internal/models"
)

var (
	scoreFile       string
	scoreHighlights int
)

// scoreCmd scores a single piece of review text.
var scoreCmd = &cobra.Command{
	Use:   "score [text]",
	Short: "Score a movie review's sentiment",
	Long: `Scores a review's sentiment, printing the label, star rating and the
positive-class probability. The review can be given as an argument or read
from a text or HTML file with --file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		text, err := reviewTextFromArgs(args, scoreFile)
		if err != nil {
			return err
		}

		result, err := appInstance.ReviewService.ScoreText(text)
		if err != nil {
			return fmt.Errorf("scoring failed: %w", err)
		}

		printResult(result)

		if scoreHighlights > 0 {
			extractor, err := highlights.NewExtractor(appInstance.Scorer)
			if err != nil {
				return err
			}
			positive, negative, err := extractor.Extract(text, scoreHighlights)
			if err != nil {
				return err
			}
			printHighlights(positive, negative)
		}
		return nil
	},
}

func reviewTextFromArgs(args []string, file string) (string, error) {
	if file != "" {
		res, err := ingest.FromFile(file)
		if err != nil {
			return "", fmt.Errorf("read review file: %w", err)
		}
		return res.Body, nil
	}
	if len(args) == 0 {
		return "", fmt.Errorf("provide review text as an argument or use --file")
	}
	return strings.Join(args, " "), nil
}

func printResult(result models.SentimentResult) {
	label := labelString(result.Label)
	fmt.Printf("Verdict:     %s (%s)\n", label, strings.Repeat("★", result.Stars)+strings.Repeat("☆", 5-result.Stars))
	fmt.Printf("Probability: %.4f\n", result.Probability)
	fmt.Printf("Advice:      %s\n", result.Advice)
}

func labelString(label models.Label) string {
	switch label {
	case models.LabelPositive:
		return color.GreenString(string(label))
	case models.LabelMixed:
		return color.YellowString(string(label))
	default:
		return color.RedString(string(label))
	}
}

func printHighlights(positive, negative []highlights.ScoredSentence) {
	if len(positive) > 0 {
		fmt.Printf("\n%s\n", color.GreenString("Strongest positive sentences:"))
		for _, s := range positive {
			fmt.Printf("  [%.2f] %s\n", s.Probability, s.Text)
		}
	}
	if len(negative) > 0 {
		fmt.Printf("\n%s\n", color.RedString("Strongest negative sentences:"))
		for _, s := range negative {
			fmt.Printf("  [%.2f] %s\n", s.Probability, s.Text)
		}
	}
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().StringVarP(&scoreFile, "file", "f", "", "Read review text from a .txt or .html file")
	scoreCmd.Flags().IntVar(&scoreHighlights, "highlights", 0, "Show the N strongest positive and negative sentences")
}
