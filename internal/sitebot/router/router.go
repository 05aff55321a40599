// Package router provides sitebot routing.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/vivekpraj/website-to-chatbot/internal/sitebot/handler"
)

// HealthChecker reports the health of one dependency.
type HealthChecker struct {
	Name  string
	Check func() error
}

// Register registers the sitebot routes on the gin engine.
func Register(engine *gin.Engine, botHandler *handler.BotHandler, chatHandler *handler.ChatHandler, checkers ...HealthChecker) {
	engine.GET("/healthz", healthz(checkers))

	v1 := engine.Group("/v1")
	{
		bots := v1.Group("/bots")
		{
			bots.POST("", botHandler.Create)
			bots.GET("", botHandler.List)
			bots.GET("/:bot_id", botHandler.Get)
			bots.POST("/:bot_id/refresh", botHandler.Refresh)
			bots.POST("/:bot_id/chat", chatHandler.Chat)
		}
	}

	logger.Info("HTTP routes registered")
}

// healthz 逐个探测依赖，任一失败返回 503。
func healthz(checkers []HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		deps := make(map[string]string, len(checkers))

		for _, checker := range checkers {
			if err := checker.Check(); err != nil {
				status = http.StatusServiceUnavailable
				deps[checker.Name] = err.Error()
				continue
			}
			deps[checker.Name] = "ok"
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "unavailable"
		}

		c.JSON(status, gin.H{
			"status": overall,
			"deps":   deps,
		})
	}
}
