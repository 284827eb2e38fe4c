// Package server exposes the engine over HTTP.
package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"chess-bot/config"
	"chess-bot/engine"
)

// Server answers move and evaluation requests with one shared engine. The engine
// serializes searches itself.
type Server struct {
	eng    *engine.Engine
	budget engine.Budget
}

// New wraps eng. budget applies to requests that do not bring their own.
func New(eng *engine.Engine, budget engine.Budget) *Server {
	return &Server{eng: eng, budget: budget}
}

// NewRouter builds the HTTP router.
func NewRouter(s *Server, cfg config.ServerConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/health", Health)
	router.POST("/move", s.Move)
	router.POST("/evaluate", s.Evaluate)
	return router
}
