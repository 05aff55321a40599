// Package handler provides HTTP handlers for the sitebot service.
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vivekpraj/website-to-chatbot/internal/model"
	"github.com/vivekpraj/website-to-chatbot/internal/pkg/httputils"
	"github.com/vivekpraj/website-to-chatbot/internal/sitebot/biz"
	"github.com/vivekpraj/website-to-chatbot/pkg/errors"
)

// BotHandler handles bot lifecycle HTTP requests.
type BotHandler struct {
	bots *biz.BotService
}

// NewBotHandler creates a new BotHandler.
func NewBotHandler(bots *biz.BotService) *BotHandler {
	return &BotHandler{bots: bots}
}

// CreateBotRequest represents a bot creation request.
type CreateBotRequest struct {
	WebsiteURL string `json:"website_url" binding:"required,url"`
}

// BotResponse represents a bot in API responses.
type BotResponse struct {
	BotID      string `json:"bot_id"`
	WebsiteURL string `json:"website_url"`
	Status     string `json:"status"`
	FailReason string `json:"fail_reason,omitempty"`
	PageCount  int    `json:"page_count"`
	ChunkCount int    `json:"chunk_count"`
	ChatURL    string `json:"chat_url"`
}

func toBotResponse(bot *model.Bot) *BotResponse {
	return &BotResponse{
		BotID:      bot.BotID,
		WebsiteURL: bot.WebsiteURL,
		Status:     bot.Status,
		FailReason: bot.FailReason,
		PageCount:  bot.PageCount,
		ChunkCount: bot.ChunkCount,
		ChatURL:    "/v1/bots/" + bot.BotID + "/chat",
	}
}

// Create builds a bot for a website and runs the ingestion pipeline.
// Repeated requests for the same website return the existing bot.
func (h *BotHandler) Create(c *gin.Context) {
	var req CreateBotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage(err.Error()), nil)
		return
	}

	bot, err := h.bots.CreateBot(c.Request.Context(), req.WebsiteURL)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	httputils.WriteResponse(c, nil, toBotResponse(bot))
}

// Get returns one bot and its current pipeline status.
func (h *BotHandler) Get(c *gin.Context) {
	bot, err := h.bots.GetBot(c.Request.Context(), c.Param("bot_id"))
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	httputils.WriteResponse(c, nil, toBotResponse(bot))
}

// ListBotsResponse represents a bot list page.
type ListBotsResponse struct {
	Total int64          `json:"total"`
	Items []*BotResponse `json:"items"`
}

// List returns a page of bots.
func (h *BotHandler) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	total, bots, err := h.bots.ListBots(c.Request.Context(), offset, limit)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	items := make([]*BotResponse, len(bots))
	for i, bot := range bots {
		items[i] = toBotResponse(bot)
	}

	httputils.WriteResponse(c, nil, &ListBotsResponse{Total: total, Items: items})
}

// Refresh re-crawls the website and rebuilds the bot's index.
func (h *BotHandler) Refresh(c *gin.Context) {
	bot, err := h.bots.RefreshBot(c.Request.Context(), c.Param("bot_id"))
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	httputils.WriteResponse(c, nil, toBotResponse(bot))
}
