// Package model provides data models for the sitebot service.
package model

import (
	"time"
)

// Bot lifecycle states.
const (
	// StatusProcessing 摄取流水线进行中。
	StatusProcessing = "processing"
	// StatusReady 索引就绪，可以对话。
	StatusReady = "ready"
	// StatusFailed 摄取失败，bot 不可用。
	StatusFailed = "failed"
)

// Bot represents one website-backed chatbot.
//
// WebsiteURL carries a unique index so concurrent creates for the same
// site collapse to one row.
type Bot struct {
	ID           int64      `json:"-" gorm:"primaryKey;autoIncrement"`
	BotID        string     `json:"bot_id" gorm:"type:varchar(64);uniqueIndex;not null"`
	WebsiteURL   string     `json:"website_url" gorm:"type:varchar(512);uniqueIndex;not null"`
	Status       string     `json:"status" gorm:"type:varchar(32);default:'processing'"` // processing, ready, failed
	FailReason   string     `json:"fail_reason,omitempty" gorm:"type:varchar(512)"`
	PageCount    int        `json:"page_count" gorm:"default:0"`
	ChunkCount   int        `json:"chunk_count" gorm:"default:0"`
	MessageCount int64      `json:"message_count" gorm:"default:0"`
	LastUsedAt   *time.Time `json:"last_used_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Bot.
func (Bot) TableName() string {
	return "bots"
}

// IsReady reports whether the bot can serve chat requests.
func (b *Bot) IsReady() bool {
	return b.Status == StatusReady
}

// ChatResult represents the answer to one chat message.
type ChatResult struct {
	Answer  string        `json:"answer"`
	Sources []SourceChunk `json:"sources"`
	Cached  bool          `json:"cached,omitempty"`
}

// SourceChunk represents one retrieved chunk used to ground an answer.
type SourceChunk struct {
	ChunkID string  `json:"chunk_id"`
	PageURL string  `json:"page_url"`
	Content string  `json:"content"`
	Score   float32 `json:"score"`
}
