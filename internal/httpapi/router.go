package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sllt/railbot/internal/bot"
	"github.com/sllt/railbot/internal/common"
	"github.com/sllt/railbot/internal/config"
	"github.com/sllt/railbot/internal/httpapi/handlers"
	"github.com/sllt/railbot/internal/httpapi/middleware"
	"go.uber.org/zap"
)

func NewRouter(engine *bot.Engine, cfg config.Config, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	h := handlers.NewHandler(engine, log)

	r.GET("/ping", h.Ping)
	r.GET("/v1/help", h.Help)
	r.POST("/v1/messages", h.HandleMessage)

	return r
}
