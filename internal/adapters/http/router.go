package http

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/lawline/consult/internal/adapters/signal"
	"github.com/lawline/consult/internal/app"
	"github.com/lawline/consult/internal/auth"
	"github.com/lawline/consult/internal/config"
)

func SetupRouter(ctx context.Context, cfg *config.Config, hub *app.Hub, tokens *auth.Tokens) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	api := &API{Hub: hub, Tokens: tokens, Cfg: cfg}

	r.POST("/register", api.Register)
	r.POST("/login", api.Login)
	r.POST("/lawyers/status", api.RequireAuth(), api.UpdateStatus)
	r.GET("/health", api.Health)

	ctl := signal.NewController(hub, tokens, cfg)
	r.GET("/ws", func(c *gin.Context) {
		ctl.HandleSignal(ctx, c)
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
