package routes

import (
	"log"
	"net/http"
	"strconv"

	"surveyquiz/handlers"
	"surveyquiz/middleware"
	"surveyquiz/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	subjectHandler *handlers.SubjectHandler,
	quizHandler *handlers.QuizHandler,
	respondentHandler *handlers.RespondentHandler,
	takeHandler *handlers.TakeHandler,
	hub *services.Hub,
	quizService *services.QuizService,
	jwtSecret string,
) {
	// API routes
	api := router.Group("/api")
	{
		// Public routes
		api.GET("/subjects", subjectHandler.GetSubjects)

		auth := api.Group("/auth")
		{
			auth.POST("/signup/moderator", authHandler.SignUpModerator)
			auth.POST("/signup/respondent", authHandler.SignUpRespondent)
			auth.POST("/login", authHandler.Login)
		}

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(jwtSecret))
		{
			protected.GET("/auth/profile", authHandler.GetProfile)
			protected.POST("/auth/logout", authHandler.Logout)

			// Respondent routes
			respondents := protected.Group("/respondents")
			respondents.Use(middleware.RequireRespondent())
			{
				respondents.GET("/quizzes", respondentHandler.GetAvailableQuizzes)
				respondents.GET("/interests", respondentHandler.GetInterests)
				respondents.PUT("/interests", respondentHandler.UpdateInterests)
				respondents.GET("/taken", respondentHandler.GetTakenQuizzes)
				respondents.GET("/quizzes/:id", takeHandler.GetTakeState)
				respondents.POST("/quizzes/:id/answers", takeHandler.SubmitAnswer)
			}

			// Moderator routes
			moderators := protected.Group("/moderators")
			moderators.Use(middleware.RequireModerator())
			{
				quizzes := moderators.Group("/quizzes")
				{
					quizzes.GET("", quizHandler.GetOwnedQuizzes)
					quizzes.POST("", quizHandler.CreateQuiz)
					quizzes.GET("/:id", quizHandler.GetQuiz)
					quizzes.PUT("/:id", quizHandler.UpdateQuiz)
					quizzes.DELETE("/:id", quizHandler.DeleteQuiz)
					quizzes.GET("/:id/results", quizHandler.GetQuizResults)
					quizzes.POST("/:id/questions", quizHandler.AddQuestion)
					quizzes.GET("/:id/questions/:questionID", quizHandler.GetQuestion)
					quizzes.PUT("/:id/questions/:questionID", quizHandler.UpdateQuestion)
					quizzes.DELETE("/:id/questions/:questionID", quizHandler.DeleteQuestion)
				}
			}
		}
	}

	// WebSocket endpoint for the live results feed. Browsers cannot set an
	// Authorization header on a socket, so the token rides in the query.
	router.GET("/ws/moderators/quizzes/:id/results", func(c *gin.Context) {
		quizID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quiz ID"})
			return
		}

		userID, ok := parseWSToken(c.Query("token"), jwtSecret)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		// Ownership check, masked as not-found like everywhere else.
		if _, err := quizService.GetQuizByID(uint(quizID), userID); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed for quiz %d results feed: %v", quizID, err)
			return
		}

		hub.RegisterClient(conn, uint(quizID))
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// parseWSToken validates a query-string JWT and returns the moderator's
// user id.
func parseWSToken(tokenString string, jwtSecret string) (uint, bool) {
	if tokenString == "" {
		return 0, false
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, false
	}
	if isModerator, _ := claims["is_moderator"].(bool); !isModerator {
		return 0, false
	}
	return uint(userID), true
}
