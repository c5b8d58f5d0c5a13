package cmd

import (
	"fmt"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"revue/internal/apihandlers"
)

var (
	serveAddr string
	servePort string
)

// serveCmd runs the HTTP API server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run Revue as an HTTP API server",
	Long: `Starts an HTTP server exposing scoring, aggregation, the movie catalog
and recommendations via a RESTful API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		router := gin.Default()
		apiHandler := apihandlers.NewAPIHandler(appInstance)

		v1 := router.Group("/api/v1")
		{
			v1.POST("/score", apiHandler.ScoreHandler)
			v1.POST("/aggregate", apiHandler.AggregateHandler)

			movieGroup := v1.Group("/movies")
			{
				movieGroup.POST("", apiHandler.AddMovieHandler)
				movieGroup.GET("", apiHandler.ListMoviesHandler)
				movieGroup.GET("/:id", apiHandler.GetMovieHandler)
				movieGroup.POST("/:id/reviews", apiHandler.AddReviewHandler)
				movieGroup.GET("/:id/reviews", apiHandler.ListReviewsHandler)
				movieGroup.GET("/:id/verdict", apiHandler.VerdictHandler)
				movieGroup.POST("/:id/aggregate", apiHandler.AggregateMovieHandler)
			}

			v1.GET("/similar", apiHandler.SimilarHandler)
			v1.GET("/recommendations/:userId", apiHandler.RecommendationsHandler)
			v1.POST("/ratings", apiHandler.RateHandler)
		}

		router.GET("/health", apiHandler.HealthHandler)

		listenAddr := fmt.Sprintf("%s:%s", serveAddr, servePort)
		log.Infof("starting Revue API server on http://%s", listenAddr)
		if err := router.Run(listenAddr); err != nil {
			return fmt.Errorf("failed to run API server: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost", "Address to listen on (e.g. '0.0.0.0' for all interfaces)")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on")
}
