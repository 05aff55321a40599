// Package biz 实现 sitebot 的核心业务流程：
// 网站摄取流水线（抓取、清洗、分块、向量化、建索引）和基于检索的对话。
package biz

import (
	"context"
	stderrors "errors"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/kart-io/logger"
	"gorm.io/gorm"

	"github.com/vivekpraj/website-to-chatbot/internal/model"
	"github.com/vivekpraj/website-to-chatbot/internal/pkg/crawler"
	"github.com/vivekpraj/website-to-chatbot/internal/pkg/webtext"
	"github.com/vivekpraj/website-to-chatbot/internal/sitebot/store"
	"github.com/vivekpraj/website-to-chatbot/pkg/errors"
	"github.com/vivekpraj/website-to-chatbot/pkg/llm"
	"github.com/vivekpraj/website-to-chatbot/pkg/pool"
)

// IngestConfig 摄取流水线配置。
type IngestConfig struct {
	// MaxPages 单次抓取最多访问的 URL 数。
	MaxPages int
	// MaxChunkWords 单个块的词数上限。
	MaxChunkWords int
	// MinLineChars 清洗后保留片段的最小字符数。
	MinLineChars int
	// EmbedBatchSize 单次嵌入请求的块数。
	EmbedBatchSize int
}

// DefaultIngestConfig 返回默认摄取配置。
func DefaultIngestConfig() *IngestConfig {
	return &IngestConfig{
		MaxPages:       10,
		MaxChunkWords:  webtext.DefaultMaxChunkWords,
		MinLineChars:   webtext.DefaultMinLineChars,
		EmbedBatchSize: 100,
	}
}

// BotService 负责 bot 的创建、重建和查询。
//
// 摄取流水线同步执行：调用方拿到返回值时 bot 已经是
// ready 或 failed 两个终态之一。
type BotService struct {
	store    store.Factory
	index    store.VectorIndex
	embedder llm.EmbeddingProvider
	crawler  *crawler.Crawler
	pool     *pool.Pool
	cfg      *IngestConfig
}

// NewBotService 创建 BotService。cfg 为 nil 时使用默认配置。
func NewBotService(
	factory store.Factory,
	index store.VectorIndex,
	embedder llm.EmbeddingProvider,
	cr *crawler.Crawler,
	p *pool.Pool,
	cfg *IngestConfig,
) *BotService {
	if cfg == nil {
		cfg = DefaultIngestConfig()
	}
	return &BotService{
		store:    factory,
		index:    index,
		embedder: embedder,
		crawler:  cr,
		pool:     p,
		cfg:      cfg,
	}
}

// CreateBot 为一个网站创建 bot 并执行摄取流水线。
//
// 创建是幂等的：同一 website_url 的重复请求返回已存在的 bot，
// 不会重新摄取。并发创建由 website_url 上的唯一索引裁决，
// 输掉竞争的一方同样回落到已存在的行。
func (s *BotService) CreateBot(ctx context.Context, websiteURL string) (*model.Bot, error) {
	bot := &model.Bot{
		BotID:      uuid.NewString(),
		WebsiteURL: websiteURL,
		Status:     model.StatusProcessing,
	}

	if err := s.store.Bots().Create(ctx, bot); err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			existing, gerr := s.store.Bots().GetByWebsiteURL(ctx, websiteURL)
			if gerr != nil {
				// 输掉了唯一索引竞争，但赢家的行又读不回来，
				// 只能把冲突如实返回给调用方重试。
				if isNotFound(gerr) {
					return nil, errors.ErrBotExists.WithMessagef(
						"bot for %s is being created concurrently", websiteURL)
				}
				return nil, errors.ErrDatabase.WithCause(gerr)
			}
			logger.Infow("bot already exists, reusing",
				"website_url", websiteURL,
				"bot_id", existing.BotID,
			)
			return existing, nil
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}

	logger.Infow("bot created, starting ingestion",
		"bot_id", bot.BotID,
		"website_url", websiteURL,
	)

	if err := s.runPipeline(ctx, bot); err != nil {
		s.markFailed(ctx, bot.BotID, err)
		return nil, err
	}

	return s.GetBot(ctx, bot.BotID)
}

// RefreshBot 重新摄取一个已存在的 bot。
//
// 先清空向量索引再重建，避免旧块残留在新索引里。清空到重建
// 完成之间 bot 处于 processing，对话请求会被拒绝。
func (s *BotService) RefreshBot(ctx context.Context, botID string) (*model.Bot, error) {
	bot, err := s.GetBot(ctx, botID)
	if err != nil {
		return nil, err
	}

	if err := s.index.Reset(ctx, botID); err != nil {
		return nil, errors.ErrIndexWrite.WithCause(err)
	}

	if err := s.store.Bots().UpdateStatus(ctx, botID, model.StatusProcessing, ""); err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}

	logger.Infow("bot refresh started",
		"bot_id", botID,
		"website_url", bot.WebsiteURL,
	)

	if err := s.runPipeline(ctx, bot); err != nil {
		s.markFailed(ctx, botID, err)
		return nil, err
	}

	return s.GetBot(ctx, botID)
}

// GetBot 按 ID 查询 bot。
func (s *BotService) GetBot(ctx context.Context, botID string) (*model.Bot, error) {
	bot, err := s.store.Bots().Get(ctx, botID)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.ErrBotNotFound.WithMessagef("bot %s not found", botID)
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return bot, nil
}

// isNotFound 判断是否为记录不存在错误。
func isNotFound(err error) bool {
	return stderrors.Is(err, gorm.ErrRecordNotFound)
}

// ListBots 分页列出 bot。
func (s *BotService) ListBots(ctx context.Context, offset, limit int) (int64, []*model.Bot, error) {
	count, bots, err := s.store.Bots().List(ctx, offset, limit)
	if err != nil {
		return 0, nil, errors.ErrDatabase.WithCause(err)
	}
	return count, bots, nil
}

// runPipeline 执行完整摄取流水线并在成功时把 bot 置为 ready。
func (s *BotService) runPipeline(ctx context.Context, bot *model.Bot) error {
	pages, err := s.crawler.Crawl(ctx, bot.WebsiteURL, s.cfg.MaxPages)
	if err != nil {
		return errors.ErrCrawlFailed.WithCause(err)
	}

	chunkTexts, chunkPages := s.processPages(ctx, pages)
	if err := ctx.Err(); err != nil {
		return errors.ErrInternal.WithMessage("ingestion cancelled").WithCause(err)
	}
	if len(chunkTexts) == 0 {
		return errors.ErrEmptyContent.WithMessagef(
			"no usable content extracted from %s", bot.WebsiteURL)
	}

	embeddings, err := s.embedAll(ctx, chunkTexts)
	if err != nil {
		return err
	}

	records := make([]*store.ChunkRecord, len(chunkTexts))
	for i := range chunkTexts {
		records[i] = &store.ChunkRecord{
			ID:        chunkID(bot.BotID, int64(i)),
			BotID:     bot.BotID,
			PageURL:   chunkPages[i],
			Ordinal:   int64(i),
			Content:   chunkTexts[i],
			Embedding: embeddings[i],
		}
	}

	if err := s.index.Upsert(ctx, bot.BotID, records); err != nil {
		return errors.ErrIndexWrite.WithCause(err)
	}

	bot.Status = model.StatusReady
	bot.FailReason = ""
	bot.PageCount = len(pages)
	bot.ChunkCount = len(records)
	if err := s.store.Bots().Update(ctx, bot); err != nil {
		return errors.ErrDatabase.WithCause(err)
	}

	logger.Infow("bot ingestion finished",
		"bot_id", bot.BotID,
		"pages", len(pages),
		"chunks", len(records),
	)

	return nil
}

// processPages 并发清洗分块每个页面，按页面访问顺序收集结果。
//
// 块的全局序号在收集之后统一分配，与并发调度顺序无关，
// 保证同一输入产生同样的 {bot_id}_{ordinal} 标识。
//
// wg.Done 在任务内无条件执行：上下文取消只是跳过清洗本身，
// 否则排队中被取消的任务会让 wg.Wait 永远阻塞。
func (s *BotService) processPages(ctx context.Context, pages []crawler.Page) ([]string, []string) {
	perPage := make([][]string, len(pages))

	var wg sync.WaitGroup
	for i := range pages {
		i := i
		wg.Add(1)
		task := func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			perPage[i] = webtext.Process(pages[i].Text, s.cfg.MinLineChars, s.cfg.MaxChunkWords)
		}
		if s.pool == nil || s.pool.Submit(task) != nil {
			// 池不可用时退化为串行处理。
			task()
		}
	}
	wg.Wait()

	var texts, urls []string
	for i, chunks := range perPage {
		for _, chunk := range chunks {
			texts = append(texts, chunk)
			urls = append(urls, pages[i].URL)
		}
	}
	return texts, urls
}

// embedAll 分批嵌入全部块，保持输入顺序。
func (s *BotService) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	batch := s.cfg.EmbedBatchSize
	if batch <= 0 {
		batch = len(texts)
	}

	embeddings := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batch {
		end := start + batch
		if end > len(texts) {
			end = len(texts)
		}

		vecs, err := s.embedder.Embed(ctx, texts[start:end])
		if err != nil {
			return nil, mapProviderError(err)
		}
		if len(vecs) != end-start {
			return nil, errors.ErrProvider.WithMessagef(
				"embedding count mismatch: want %d, got %d", end-start, len(vecs))
		}
		embeddings = append(embeddings, vecs...)
	}
	return embeddings, nil
}

// markFailed 把 bot 置为 failed 并记录失败原因。
// 状态写入失败只记日志，调用方拿到的仍是流水线的原始错误。
//
// 即使流水线因请求上下文取消而失败，终态也必须落库，
// 否则 bot 会永远停留在 processing。
func (s *BotService) markFailed(ctx context.Context, botID string, cause error) {
	ctx = context.WithoutCancel(ctx)
	reason := errors.FromError(cause).Message
	if err := s.store.Bots().UpdateStatus(ctx, botID, model.StatusFailed, reason); err != nil {
		logger.Errorw("failed to mark bot as failed",
			"bot_id", botID,
			"error", err.Error(),
		)
	}
	logger.Warnw("bot ingestion failed",
		"bot_id", botID,
		"reason", reason,
	)
}

// chunkID 生成块标识：{bot_id}_{ordinal}。
func chunkID(botID string, ordinal int64) string {
	return botID + "_" + strconv.FormatInt(ordinal, 10)
}

// mapProviderError 把供应商错误映射为对外错误码，
// 配额类错误单独映射以便调用方返回 429。
func mapProviderError(err error) *errors.Errno {
	if llm.IsQuota(err) {
		return errors.ErrProviderQuota.WithCause(err)
	}
	return errors.ErrProvider.WithCause(err)
}
