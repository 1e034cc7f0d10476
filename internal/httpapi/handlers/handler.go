package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sllt/railbot/internal/bot"
	"github.com/sllt/railbot/internal/common"
	"go.uber.org/zap"
)

type Handler struct {
	Engine *bot.Engine

	log *zap.Logger
}

func NewHandler(engine *bot.Engine, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Engine: engine, log: log}
}

func (h *Handler) Ping(c *gin.Context) {
	common.Ok(c, gin.H{"pong": true})
}

func (h *Handler) Help(c *gin.Context) {
	c.String(200, h.Engine.HelpText())
}
