// Package store provides persistence for bots and their chunk vectors.
package store

import (
	"context"

	"github.com/vivekpraj/website-to-chatbot/internal/model"
)

// Factory defines the factory interface for creating stores.
type Factory interface {
	Bots() BotStore
	Close() error
}

// BotStore defines the bot registry storage interface.
type BotStore interface {
	// Create inserts a new bot row. A duplicate website URL returns
	// gorm.ErrDuplicatedKey via the driver translation.
	Create(ctx context.Context, bot *model.Bot) error
	Update(ctx context.Context, bot *model.Bot) error
	Get(ctx context.Context, botID string) (*model.Bot, error)
	GetByWebsiteURL(ctx context.Context, websiteURL string) (*model.Bot, error)
	List(ctx context.Context, offset, limit int) (int64, []*model.Bot, error)
	// UpdateStatus transitions the bot lifecycle state.
	UpdateStatus(ctx context.Context, botID, status, failReason string) error
	// TouchUsage increments the message counter and stamps last use.
	TouchUsage(ctx context.Context, botID string) error
}

// ChunkRecord 表示一个待索引的文档块。
type ChunkRecord struct {
	// ID 块 ID，格式为 {bot_id}_{ordinal}。
	ID string
	// BotID 所属 bot。
	BotID string
	// PageURL 来源页面。
	PageURL string
	// Ordinal 在 bot 索引中的全局序号。
	Ordinal int64
	// Content 块文本。
	Content string
	// Embedding 嵌入向量。
	Embedding []float32
}

// Hit 表示一次检索命中。
type Hit struct {
	ID      string
	PageURL string
	Content string
	Ordinal int64
	Score   float32
}

// VectorIndex 定义按 bot 隔离的向量索引接口。
type VectorIndex interface {
	// Upsert 写入一个 bot 的块向量。
	Upsert(ctx context.Context, botID string, chunks []*ChunkRecord) error

	// Query 返回与向量最相近的 topK 个块，相似度降序。
	// bot 尚无索引时返回空结果而不是错误。
	Query(ctx context.Context, botID string, embedding []float32, topK int) ([]*Hit, error)

	// Reset 清空一个 bot 的全部向量。索引不存在时不报错。
	Reset(ctx context.Context, botID string) error

	// Count 返回一个 bot 已索引的块数量。
	Count(ctx context.Context, botID string) (int64, error)

	// Close 关闭底层连接。
	Close(ctx context.Context) error
}
