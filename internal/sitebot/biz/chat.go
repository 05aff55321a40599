package biz

import (
	"context"

	"github.com/kart-io/logger"

	"github.com/vivekpraj/website-to-chatbot/internal/model"
	"github.com/vivekpraj/website-to-chatbot/internal/sitebot/store"
	"github.com/vivekpraj/website-to-chatbot/pkg/errors"
	"github.com/vivekpraj/website-to-chatbot/pkg/llm"
)

// DefaultTopK 每次对话检索的块数。
const DefaultTopK = 3

// ChatService 实现基于检索的对话：嵌入问题、召回块、
// 拼装仅含上下文的提示，再由 Chat 供应商生成回答。
type ChatService struct {
	store    store.Factory
	index    store.VectorIndex
	embedder llm.EmbeddingProvider
	chatter  llm.ChatProvider
	cache    *AnswerCache
	topK     int
}

// NewChatService 创建 ChatService。cache 可以为 nil（禁用缓存），
// topK <= 0 时使用默认值。
func NewChatService(
	factory store.Factory,
	index store.VectorIndex,
	embedder llm.EmbeddingProvider,
	chatter llm.ChatProvider,
	cache *AnswerCache,
	topK int,
) *ChatService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &ChatService{
		store:    factory,
		index:    index,
		embedder: embedder,
		chatter:  chatter,
		cache:    cache,
		topK:     topK,
	}
}

// Chat 回答针对一个 bot 的提问。
//
// bot 必须处于 ready 状态，否则返回冲突错误且不计入用量。
// 前置检查通过后才递增消息计数，命中缓存的回答同样计数。
func (s *ChatService) Chat(ctx context.Context, botID, question string) (*model.ChatResult, error) {
	bot, err := s.getBot(ctx, botID)
	if err != nil {
		return nil, err
	}
	if !bot.IsReady() {
		return nil, errors.ErrBotNotReady.WithMessagef(
			"bot %s is %s, not ready for chat", botID, bot.Status)
	}

	if err := s.store.Bots().TouchUsage(ctx, botID); err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}

	if cached, err := s.cache.Get(ctx, botID, question); err == nil && cached != nil {
		cached.Cached = true
		logger.Debugw("answer cache hit", "bot_id", botID)
		return cached, nil
	}

	queryVec, err := s.embedder.EmbedSingle(ctx, question)
	if err != nil {
		return nil, mapProviderError(err)
	}

	hits, err := s.index.Query(ctx, botID, queryVec, s.topK)
	if err != nil {
		return nil, errors.ErrInternal.WithMessage("Vector index query failed").WithCause(err)
	}
	if len(hits) == 0 {
		return nil, errors.ErrNoContext.WithMessagef(
			"no relevant content retrieved for bot %s", botID)
	}

	contexts := make([]string, len(hits))
	sources := make([]model.SourceChunk, len(hits))
	for i, hit := range hits {
		contexts[i] = hit.Content
		sources[i] = model.SourceChunk{
			ChunkID: hit.ID,
			PageURL: hit.PageURL,
			Content: hit.Content,
			Score:   hit.Score,
		}
	}

	answer, err := s.chatter.Generate(ctx, BuildPrompt(contexts, question), "")
	if err != nil {
		return nil, mapProviderError(err)
	}

	result := &model.ChatResult{
		Answer:  answer,
		Sources: sources,
	}

	if err := s.cache.Set(ctx, botID, question, result); err != nil {
		logger.Warnw("answer cache write failed",
			"bot_id", botID,
			"error", err.Error(),
		)
	}

	logger.Infow("chat answered",
		"bot_id", botID,
		"hits", len(hits),
	)

	return result, nil
}

// getBot 查询 bot，未找到时映射为对外的 404 错误。
func (s *ChatService) getBot(ctx context.Context, botID string) (*model.Bot, error) {
	bot, err := s.store.Bots().Get(ctx, botID)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.ErrBotNotFound.WithMessagef("bot %s not found", botID)
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return bot, nil
}
