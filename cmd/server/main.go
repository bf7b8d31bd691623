package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/collab-code-pad/backend/api/handlers"
	"github.com/collab-code-pad/backend/internal/config"
	"github.com/collab-code-pad/backend/internal/executor"
	"github.com/collab-code-pad/backend/internal/store"
	"github.com/collab-code-pad/backend/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	gin.SetMode(cfg.GinMode)

	// Core services
	sessionStore := store.NewSessionStore()
	gateway := ws.NewGateway(sessionStore)
	codeExecutor := executor.New()

	// Handlers
	sessionHandler := handlers.NewSessionHandler(sessionStore, cfg.SessionURL)
	executeHandler := handlers.NewExecuteHandler(codeExecutor)
	wsHandler := handlers.NewWebSocketHandler(gateway)

	r := gin.Default()
	r.Use(corsMiddleware(cfg.AllowOrigin))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	api := r.Group("/api")
	{
		sessionHandler.RegisterRoutes(api)
		executeHandler.RegisterRoutes(api)
	}
	wsHandler.RegisterRoutes(r)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("shutting down server")
		os.Exit(0)
	}()

	log.Info().Str("addr", cfg.Addr()).Msg("starting server")
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}

// corsMiddleware returns a CORS middleware for browser clients.
func corsMiddleware(allowOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
