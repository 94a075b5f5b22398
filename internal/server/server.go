package server

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/guxingjinguang/mdclub/internal/database"
	"github.com/guxingjinguang/mdclub/internal/follow"
	"github.com/guxingjinguang/mdclub/internal/handlers"
	"github.com/guxingjinguang/mdclub/internal/middleware"
	"github.com/guxingjinguang/mdclub/internal/vote"
)

type Server struct {
	db      *database.Database
	handler *handlers.Handler
}

// NewServer creates and configures a new server
func NewServer() *http.Server {
	// Initialize database
	db, err := database.NewDatabase()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := db.Initialize(); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	// Create unified handler
	handler := handlers.NewHandler(db)

	// Create server instance
	newServer := &Server{
		db:      db,
		handler: handler,
	}

	// Configure Gin router
	router := newServer.RegisterRoutes()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // local dev fallback
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         "0.0.0.0:" + port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("🚀 Server starting on port %s\n", port)
	fmt.Println("📝 Press Ctrl+C to stop the server")

	return server
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API routes; OptionalAuth resolves the viewer for relationship blocks
	api := r.Group("/api")
	api.Use(middleware.OptionalAuth())
	{
		// Auth routes (public)
		api.POST("/register", s.handler.Auth.Register)
		api.POST("/login", s.handler.Auth.Login)

		// Question routes (public reads)
		api.GET("/questions", s.handler.Question.GetQuestions)
		api.GET("/questions/:id", s.handler.Question.GetQuestion)
		api.GET("/questions/:id/answers", s.handler.Answer.GetAnswers)
		api.GET("/questions/:id/comments", s.handler.Comment.List("question"))
		api.GET("/questions/:id/voters", s.handler.Vote.Voters(vote.KindQuestion))
		api.GET("/questions/:id/followers", s.handler.Follow.Followers(follow.KindQuestion))

		// Article routes (public reads)
		api.GET("/articles", s.handler.Article.GetArticles)
		api.GET("/articles/:id", s.handler.Article.GetArticle)
		api.GET("/articles/:id/comments", s.handler.Comment.List("article"))
		api.GET("/articles/:id/voters", s.handler.Vote.Voters(vote.KindArticle))
		api.GET("/articles/:id/followers", s.handler.Follow.Followers(follow.KindArticle))

		// Answer routes (public reads)
		api.GET("/answers/:id/comments", s.handler.Comment.List("answer"))
		api.GET("/answers/:id/voters", s.handler.Vote.Voters(vote.KindAnswer))

		// Comment routes (public reads)
		api.GET("/comments/:id/voters", s.handler.Vote.Voters(vote.KindComment))

		// Topic routes (public reads)
		api.GET("/topics", s.handler.Topic.GetTopics)
		api.GET("/topics/:id", s.handler.Topic.GetTopic)
		api.GET("/topics/:id/followers", s.handler.Follow.Followers(follow.KindTopic))

		// User routes (public reads)
		api.GET("/users/:id", s.handler.User.GetUserProfile)
		api.GET("/users/:id/followers", s.handler.Follow.Followers(follow.KindUser))

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// Auth protected routes
			protected.GET("/me", s.handler.Auth.GetMe)

			// Question protected routes
			protected.POST("/questions", s.handler.Question.CreateQuestion)
			protected.PUT("/questions/:id", s.handler.Question.UpdateQuestion)
			protected.DELETE("/questions/:id", s.handler.Question.DeleteQuestion)
			protected.POST("/questions/:id/answers", s.handler.Answer.CreateAnswer)
			protected.POST("/questions/:id/comments", s.handler.Comment.Create("question"))
			protected.POST("/questions/:id/votes", s.handler.Vote.Add(vote.KindQuestion))
			protected.DELETE("/questions/:id/votes", s.handler.Vote.Delete(vote.KindQuestion))
			protected.POST("/questions/:id/follow", s.handler.Follow.Follow(follow.KindQuestion))
			protected.DELETE("/questions/:id/follow", s.handler.Follow.Unfollow(follow.KindQuestion))

			// Article protected routes
			protected.POST("/articles", s.handler.Article.CreateArticle)
			protected.PUT("/articles/:id", s.handler.Article.UpdateArticle)
			protected.DELETE("/articles/:id", s.handler.Article.DeleteArticle)
			protected.POST("/articles/:id/comments", s.handler.Comment.Create("article"))
			protected.POST("/articles/:id/votes", s.handler.Vote.Add(vote.KindArticle))
			protected.DELETE("/articles/:id/votes", s.handler.Vote.Delete(vote.KindArticle))
			protected.POST("/articles/:id/follow", s.handler.Follow.Follow(follow.KindArticle))
			protected.DELETE("/articles/:id/follow", s.handler.Follow.Unfollow(follow.KindArticle))

			// Answer protected routes
			protected.PUT("/answers/:id", s.handler.Answer.UpdateAnswer)
			protected.DELETE("/answers/:id", s.handler.Answer.DeleteAnswer)
			protected.POST("/answers/:id/comments", s.handler.Comment.Create("answer"))
			protected.POST("/answers/:id/votes", s.handler.Vote.Add(vote.KindAnswer))
			protected.DELETE("/answers/:id/votes", s.handler.Vote.Delete(vote.KindAnswer))

			// Comment protected routes
			protected.PUT("/comments/:id", s.handler.Comment.Update)
			protected.DELETE("/comments/:id", s.handler.Comment.Delete)
			protected.POST("/comments/:id/votes", s.handler.Vote.Add(vote.KindComment))
			protected.DELETE("/comments/:id/votes", s.handler.Vote.Delete(vote.KindComment))

			// Topic protected routes
			protected.POST("/topics", s.handler.Topic.CreateTopic)
			protected.POST("/topics/:id/follow", s.handler.Follow.Follow(follow.KindTopic))
			protected.DELETE("/topics/:id/follow", s.handler.Follow.Unfollow(follow.KindTopic))

			// User protected routes
			protected.PUT("/users/:id", s.handler.User.UpdateUserProfile)
			protected.POST("/users/:id/follow", s.handler.Follow.Follow(follow.KindUser))
			protected.DELETE("/users/:id/follow", s.handler.Follow.Unfollow(follow.KindUser))
		}
	}

	return r
}
