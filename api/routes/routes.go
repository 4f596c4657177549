package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/config"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/handlers"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/middleware"
)

// Handlers bundles the handler set wired up in main
type Handlers struct {
	Quiz    *handlers.QuizHandler
	Raffle  *handlers.RaffleHandler
	Auth    *handlers.AuthHandler
	User    *handlers.UserHandler
	Session *handlers.SessionHandler
	ToS     *handlers.ToSHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public routes
	public := router.Group("/v1")
	{
		quiz := public.Group("/quiz")
		{
			quiz.GET("", h.Quiz.GetQuiz)
			quiz.GET("/tutorial", h.Quiz.GetTutorial)
			quiz.POST("/verify", h.Quiz.VerifyAnswers)
			quiz.GET("/question/:id/verify-answer/:answerId", h.Quiz.VerifyAnswer)
			quiz.GET("/raffle", h.Raffle.GetRaffle)
			quiz.POST("/raffle/enter", h.Raffle.EnterRaffle)
		}

		public.POST("/auth/login", h.Auth.Login)

		public.GET("/users", h.User.GetByEmail)
		public.POST("/users", h.User.Register)

		public.POST("/session/create", h.Session.Create)
		public.POST("/session/update", h.Session.Update)

		public.GET("/tos/:platform", h.ToS.Get)
	}

	// Protected routes
	protected := router.Group("/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg))
	{
		quiz := protected.Group("/quiz")
		{
			quiz.GET("/edit", h.Quiz.GetQuizEdit)
			quiz.POST("/edit", h.Quiz.UpdateQuiz)

			quiz.GET("/question/:id/edit", h.Quiz.GetQuestion)
			quiz.POST("/question", h.Quiz.AddQuestion)
			quiz.PUT("/question/:id", h.Quiz.UpdateQuestion)
			quiz.DELETE("/question/:id", h.Quiz.DeleteQuestion)

			quiz.POST("/question/:id/answer", h.Quiz.AddAnswer)
			quiz.DELETE("/question/:id/answer/:answerId", h.Quiz.DeleteAnswer)

			quiz.PUT("/raffle", h.Raffle.NewRaffle)
			quiz.GET("/raffle/edit", h.Raffle.GetRaffleEdit)
			quiz.POST("/raffle/edit", h.Raffle.EditRaffle)
			quiz.GET("/raffle/list", h.Raffle.ListRaffles)
			quiz.GET("/raffle/entrants", h.Raffle.ListEntrants)
			quiz.GET("/raffle/winner", h.Raffle.SelectWinner)
		}

		users := protected.Group("/users")
		{
			users.GET("/list", h.User.GetAll)
			users.GET("/emails/marketing", h.User.MarketingEmails)
			users.DELETE("/:id", h.User.Delete)
		}

		protected.POST("/tos", h.ToS.Update)
	}

	return router
}
