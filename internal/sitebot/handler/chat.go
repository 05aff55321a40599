package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vivekpraj/website-to-chatbot/internal/pkg/httputils"
	"github.com/vivekpraj/website-to-chatbot/internal/sitebot/biz"
	"github.com/vivekpraj/website-to-chatbot/pkg/errors"
)

// chatTimeout 单次对话的处理上限，覆盖嵌入、检索和生成。
const chatTimeout = 60 * time.Second

// ChatHandler handles chat HTTP requests.
type ChatHandler struct {
	chat *biz.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chat *biz.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// ChatRequest represents one chat message to a bot.
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// Chat answers a question against a bot's indexed website.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage(err.Error()), nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), chatTimeout)
	defer cancel()

	result, err := h.chat.Chat(ctx, c.Param("bot_id"), req.Message)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			httputils.WriteResponse(c, errors.ErrProvider.WithMessage(
				"Chat timed out, please try again or simplify your question"), nil)
			return
		}
		httputils.WriteResponse(c, err, nil)
		return
	}

	httputils.WriteResponse(c, nil, result)
}
