package server

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/stonify5/gomoku/internal/game"
	"github.com/stonify5/gomoku/internal/transport"
)

type Options struct {
	// AllowedOrigins empty means any origin may connect.
	AllowedOrigins []string
	// StaticDir, when set, is served for every unmatched path.
	StaticDir string
}

type Stats struct {
	Rooms       int   `json:"rooms"`
	Connections int64 `json:"connections"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// origins are enforced by the middleware below
	CheckOrigin: func(r *http.Request) bool { return true },
}

// New builds the HTTP engine: health and stats probes, the /game websocket
// endpoint and optional static assets.
func New(hub *transport.Hub, registry *game.Registry, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/health", HealthHandler)

	r.Use(originGuard(opts.AllowedOrigins))
	r.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	r.GET("/stats", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, Stats{
			Rooms:       registry.Len(),
			Connections: hub.Connections(),
		})
	})
	r.GET("/game", func(ctx *gin.Context) {
		conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
		if err != nil {
			// Upgrade has already replied with an HTTP error.
			log.Warn().Str("remote", ctx.ClientIP()).Err(err).Msg("websocket upgrade failed")
			return
		}
		hub.ServeConn(conn)
	})

	if opts.StaticDir != "" {
		r.NoRoute(gin.WrapH(http.FileServer(http.Dir(opts.StaticDir))))
	}
	return r
}

func HealthHandler(ctx *gin.Context) {
	ctx.String(http.StatusOK, "OK")
}

// originGuard rejects cross-origin requests from origins outside the list.
// Requests without an Origin header (same-origin asset loads, probes) pass.
func originGuard(allowed []string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")
		if len(allowed) == 0 || origin == "" || slices.Contains(allowed, origin) {
			ctx.Next()
			return
		}
		log.Info().Str("origin", origin).Str("path", ctx.Request.URL.Path).Msg("forbidden origin")
		ctx.String(http.StatusForbidden, "forbidden origin")
		ctx.Abort()
	}
}

func corsConfig(allowed []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
		MaxAge: 12 * time.Hour,
	}
	if len(allowed) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowed
		cfg.AllowCredentials = true
	}
	return cfg
}

func requestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		log.Debug().
			Str("method", ctx.Request.Method).
			Str("path", ctx.Request.URL.Path).
			Int("status", ctx.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("remote", ctx.ClientIP()).
			Msg("request")
	}
}
