package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/vivekpraj/website-to-chatbot/internal/model"
)

type bots struct {
	db *gorm.DB
}

func newBots(db *gorm.DB) *bots {
	return &bots{db}
}

// Create inserts a new bot.
func (b *bots) Create(ctx context.Context, bot *model.Bot) error {
	return b.db.WithContext(ctx).Create(bot).Error
}

// Update saves all fields of an existing bot.
func (b *bots) Update(ctx context.Context, bot *model.Bot) error {
	return b.db.WithContext(ctx).Save(bot).Error
}

// Get retrieves a bot by its public identifier.
func (b *bots) Get(ctx context.Context, botID string) (*model.Bot, error) {
	var bot model.Bot
	if err := b.db.WithContext(ctx).Where("bot_id = ?", botID).First(&bot).Error; err != nil {
		return nil, err
	}
	return &bot, nil
}

// GetByWebsiteURL retrieves a bot by its seed website URL.
func (b *bots) GetByWebsiteURL(ctx context.Context, websiteURL string) (*model.Bot, error) {
	var bot model.Bot
	if err := b.db.WithContext(ctx).Where("website_url = ?", websiteURL).First(&bot).Error; err != nil {
		return nil, err
	}
	return &bot, nil
}

// List lists bots with pagination.
func (b *bots) List(ctx context.Context, offset, limit int) (int64, []*model.Bot, error) {
	var count int64
	var list []*model.Bot

	if err := b.db.WithContext(ctx).Model(&model.Bot{}).Count(&count).Error; err != nil {
		return 0, nil, err
	}

	if err := b.db.WithContext(ctx).Offset(offset).Limit(limit).Order("created_at DESC").Find(&list).Error; err != nil {
		return 0, nil, err
	}

	return count, list, nil
}

// UpdateStatus transitions the bot lifecycle state.
func (b *bots) UpdateStatus(ctx context.Context, botID, status, failReason string) error {
	return b.db.WithContext(ctx).Model(&model.Bot{}).
		Where("bot_id = ?", botID).
		Updates(map[string]any{
			"status":      status,
			"fail_reason": failReason,
		}).Error
}

// TouchUsage increments the message counter and stamps last use.
func (b *bots) TouchUsage(ctx context.Context, botID string) error {
	now := time.Now()
	return b.db.WithContext(ctx).Model(&model.Bot{}).
		Where("bot_id = ?", botID).
		Updates(map[string]any{
			"message_count": gorm.Expr("message_count + 1"),
			"last_used_at":  now,
		}).Error
}
