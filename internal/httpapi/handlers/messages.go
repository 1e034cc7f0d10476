package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sllt/railbot/internal/common"
	"go.uber.org/zap"
)

type messageReq struct {
	ConversationID string `json:"conversation_id"`
	Content        string `json:"content" binding:"required"`
}

// HandleMessage is the webhook surface: one text message in, one reply out.
// A missing conversation_id mints a fresh one, returned so the caller can
// keep the conversation going.
func (h *Handler) HandleMessage(c *gin.Context) {
	var req messageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	convID := strings.TrimSpace(req.ConversationID)
	if convID == "" {
		id, err := common.NewULID()
		if err != nil {
			h.log.Error("ulid generation failed", zap.Error(err))
			common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
			return
		}
		convID = id
	}

	reply, handled := h.Engine.HandleMessage(c.Request.Context(), convID, req.Content)

	common.Ok(c, gin.H{
		"conversation_id": convID,
		"reply":           reply.Text,
		"is_error":        reply.IsError,
		"handled":         handled,
	})
}
