package cmd

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"revue/internal/clix"
	"revue/internal/models"
	"revue/pkg/genretag"
)

var movieCmd = &cobra.Command{
	Use:   "movie",
	Short: "Manage the movie catalog",
}

var (
	movieAddYear          int
	movieAddOverview      string
	movieAddGenres        string
	movieAddImdbID        string
	movieAddSuggestGenres bool
)

var movieAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Register a movie",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		movie := &models.Movie{
			Title:    args[0],
			Year:     movieAddYear,
			Overview: movieAddOverview,
			Genres:   clix.SplitList(movieAddGenres),
		}
		if movieAddImdbID != "" {
			movie.ImdbID = &movieAddImdbID
		}

		if movieAddSuggestGenres && len(movie.Genres) == 0 {
			if appInstance.GenreSuggester == nil {
				return fmt.Errorf("genre suggestions need an OpenAI API key (set OPENAI_API_KEY)")
			}
			suggestion, err := appInstance.GenreSuggester.Suggest(cmd.Context(), genretag.Request{
				Title:    movie.Title,
				Year:     movie.Year,
				Overview: movie.Overview,
			})
			if err != nil {
				return fmt.Errorf("suggest genres: %w", err)
			}
			movie.Genres = suggestion.Genres
			fmt.Printf("Suggested genres: %s (confidence %.2f)\n", strings.Join(movie.Genres, ", "), suggestion.Confidence)
		}

		if err := appInstance.ReviewService.AddMovie(cmd.Context(), movie); err != nil {
			return err
		}
		fmt.Printf("Added movie %d: %s (%d)\n", movie.ID, movie.Title, movie.Year)
		return nil
	},
}

var (
	movieListLimit  int
	movieListOffset int
)

var movieListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored movies",
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		pagination, err := clix.ParsePagination(cmd.Flags())
		if err != nil {
			return err
		}

		movies, err := appInstance.MovieStore.ListMovies(cmd.Context(), pagination.Limit, pagination.Offset)
		if err != nil {
			return err
		}
		if len(movies) == 0 {
			fmt.Println("No movies found.")
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"ID", "Title", "Year", "Genres", "Mean Sentiment"})
		table.SetBorder(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for _, m := range movies {
			mean := "-"
			if m.MeanSentiment != nil {
				mean = fmt.Sprintf("%.4f", *m.MeanSentiment)
			}
			table.Append([]string{
				strconv.FormatInt(m.ID, 10),
				m.Title,
				strconv.Itoa(m.Year),
				strings.Join(m.Genres, ", "),
				mean,
			})
		}
		table.Render()
		return nil
	},
}

// movieImportCmd bulk-loads a catalog CSV with columns
// title,year,overview,genres[,imdb_id]. Genres are pipe-separated.
var movieImportCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import movies from a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open catalog file: %w", err)
		}
		defer f.Close()

		reader := csv.NewReader(f)
		reader.FieldsPerRecord = -1

		header, err := reader.Read()
		if err != nil {
			return fmt.Errorf("read CSV header: %w", err)
		}
		col := make(map[string]int, len(header))
		for i, name := range header {
			col[strings.ToLower(strings.TrimSpace(name))] = i
		}
		for _, required := range []string{"title", "year", "overview"} {
			if _, ok := col[required]; !ok {
				return fmt.Errorf("CSV is missing required column %q", required)
			}
		}

		imported, skipped := 0, 0
		for line := 2; ; line++ {
			record, err := reader.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				return fmt.Errorf("read CSV line %d: %w", line, err)
			}

			year, err := strconv.Atoi(strings.TrimSpace(record[col["year"]]))
			if err != nil {
				fmt.Printf("  - line %d: %s: bad year %q\n", line, color.YellowString("SKIP"), record[col["year"]])
				skipped++
				continue
			}
			movie := &models.Movie{
				Title:    strings.TrimSpace(record[col["title"]]),
				Year:     year,
				Overview: strings.TrimSpace(record[col["overview"]]),
			}
			if i, ok := col["genres"]; ok && i < len(record) {
				movie.Genres = clix.SplitListSep(record[i], "|")
			}
			if i, ok := col["imdb_id"]; ok && i < len(record) && strings.TrimSpace(record[i]) != "" {
				id := strings.TrimSpace(record[i])
				movie.ImdbID = &id
			}

			if err := appInstance.ReviewService.AddMovie(cmd.Context(), movie); err != nil {
				fmt.Printf("  - line %d: %s: %v\n", line, color.RedString("ERROR"), err)
				skipped++
				continue
			}
			imported++
		}

		fmt.Printf("Imported %d movies, skipped %d.\n", imported, skipped)
		if imported > 0 {
			if err := appInstance.RecommendService.RefreshIndex(cmd.Context()); err != nil {
				return fmt.Errorf("rebuild similarity index: %w", err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(movieCmd)
	movieCmd.AddCommand(movieAddCmd, movieListCmd, movieImportCmd)

	movieAddCmd.Flags().IntVarP(&movieAddYear, "year", "y", 0, "Release year")
	movieAddCmd.Flags().StringVar(&movieAddOverview, "overview", "", "Plot overview used for similarity")
	movieAddCmd.Flags().StringVar(&movieAddGenres, "genres", "", "Comma-separated genres")
	movieAddCmd.Flags().StringVar(&movieAddImdbID, "imdb-id", "", "IMDb identifier")
	movieAddCmd.Flags().BoolVar(&movieAddSuggestGenres, "suggest-genres", false, "Ask the configured chat model to fill in genres when none are given")

	movieListCmd.Flags().IntVarP(&movieListLimit, "limit", "l", 20, "Number of movies to display")
	movieListCmd.Flags().IntVarP(&movieListOffset, "offset", "o", 0, "Number of movies to skip")
}
