package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-relay/internal/auth"
	"github.com/vovakirdan/wirechat-relay/internal/config"
	"github.com/vovakirdan/wirechat-relay/internal/core"
	"github.com/vovakirdan/wirechat-relay/internal/store"
)

// NewServer builds an HTTP server with the WebSocket endpoint and REST API.
// /ws is served by the mux directly; everything else goes through gin.
func NewServer(hub *core.Hub, authService *auth.Service, st store.Store, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", healthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiHandlers := NewAPIHandlers(authService, logger)
	roomHandlers := NewRoomHandlers(hub, st, logger)

	api := router.Group("/api")
	{
		api.POST("/signup", apiHandlers.Signup)
		api.POST("/login", apiHandlers.Login)

		api.GET("/rooms", roomHandlers.ListRooms)
		api.GET("/rooms/:room/messages", roomHandlers.ListMessages)
		api.GET("/rooms/:room/users", roomHandlers.ListUsers)
		api.GET("/rooms/:room/online", roomHandlers.ListOnline)
	}

	// The WebSocket upgrade hijacks the connection, which gin's writer
	// refuses once the handshake status is written.
	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, authService, WSOptions{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		MaxMessageBytes:    cfg.MaxMessageBytes,
	}, logger))
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
