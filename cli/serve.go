package cli

import (
	"log"

	"surveyquiz/config"
	"surveyquiz/handlers"
	"surveyquiz/jobs"
	"surveyquiz/middleware"
	"surveyquiz/routes"
	"surveyquiz/services"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

// NewServeCmd wires the whole application and runs the HTTP server.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			db, err := config.InitDB(cfg)
			if err != nil {
				return err
			}

			redisClient := config.InitRedis(cfg)

			// Services
			authService := services.NewAuthService(db, cfg.JWTSecret)
			subjectService := services.NewSubjectService(db)
			quizService := services.NewQuizService(db)
			respondentService := services.NewRespondentService(db)

			hub := services.NewHub()
			go hub.Run()

			takeCache := services.NewTakeCache(redisClient)
			takeService := services.NewTakeService(db, takeCache, hub)

			// Handlers
			authHandler := handlers.NewAuthHandler(authService)
			subjectHandler := handlers.NewSubjectHandler(subjectService)
			quizHandler := handlers.NewQuizHandler(quizService)
			respondentHandler := handlers.NewRespondentHandler(respondentService)
			takeHandler := handlers.NewTakeHandler(takeService)

			// Hourly sweep of quizzes past their end date
			c := cron.New()
			if _, err := c.AddFunc("@hourly", func() { jobs.DeactivateExpiredQuizzes(db) }); err != nil {
				return err
			}
			c.Start()
			defer c.Stop()

			router := gin.Default()
			router.Use(middleware.CORS())

			routes.SetupRoutes(router, authHandler, subjectHandler, quizHandler,
				respondentHandler, takeHandler, hub, quizService, cfg.JWTSecret)

			log.Printf("Server starting on port %s", cfg.Port)
			return router.Run(":" + cfg.Port)
		},
	}
}
