package biz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivekpraj/website-to-chatbot/internal/model"
	"github.com/vivekpraj/website-to-chatbot/pkg/errors"
)

func TestChatAnswersFromRetrievedContext(t *testing.T) {
	env := newTestEnv(t)
	srv := testSite(t)
	ctx := context.Background()

	bot, err := env.bots.CreateBot(ctx, srv.URL)
	require.NoError(t, err)

	question := "what pumps and compressors do you manufacture"
	result, err := env.chat.Chat(ctx, bot.BotID, question)
	require.NoError(t, err)

	assert.Equal(t, "canned answer", result.Answer)
	assert.False(t, result.Cached)
	require.NotEmpty(t, result.Sources)
	assert.LessOrEqual(t, len(result.Sources), 3)

	// Sources carry chunk identity and provenance.
	assert.Contains(t, result.Sources[0].ChunkID, bot.BotID+"_")
	assert.NotEmpty(t, result.Sources[0].PageURL)

	// The prompt contains the retrieved context and the question, and
	// nothing is generated outside it.
	prompt := env.provider.lastPrompt()
	assert.Contains(t, prompt, question)
	assert.Contains(t, prompt, result.Sources[0].Content)
	assert.Contains(t, prompt, "Use ONLY the context below")

	// A successful chat counts against usage.
	got, err := env.bots.GetBot(ctx, bot.BotID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.MessageCount)
}

func TestChatBotNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.chat.Chat(context.Background(), "ghost", "hello")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrBotNotFound.Code))
}

func TestChatBotNotReady(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.factory.Bots().Create(ctx, &model.Bot{
		BotID:      "bot-processing",
		WebsiteURL: "https://pending.example.com",
		Status:     model.StatusProcessing,
	}))

	_, err := env.chat.Chat(ctx, "bot-processing", "hello")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrBotNotReady.Code))

	// A rejected precondition never increments the usage counter.
	bot, gerr := env.factory.Bots().Get(ctx, "bot-processing")
	require.NoError(t, gerr)
	assert.Equal(t, int64(0), bot.MessageCount)
}

func TestChatNoContext(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Ready bot with an empty index: retrieval yields nothing.
	require.NoError(t, env.factory.Bots().Create(ctx, &model.Bot{
		BotID:      "bot-empty",
		WebsiteURL: "https://empty.example.com",
		Status:     model.StatusReady,
	}))

	_, err := env.chat.Chat(ctx, "bot-empty", "anything")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrNoContext.Code))

	// The precondition passed, so the message still counted.
	bot, gerr := env.factory.Bots().Get(ctx, "bot-empty")
	require.NoError(t, gerr)
	assert.Equal(t, int64(1), bot.MessageCount)
}

func TestChatQuotaExceeded(t *testing.T) {
	env := newTestEnv(t)
	srv := testSite(t)
	ctx := context.Background()

	bot, err := env.bots.CreateBot(ctx, srv.URL)
	require.NoError(t, err)

	env.provider.quota = true

	_, err = env.chat.Chat(ctx, bot.BotID, "hello")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrProviderQuota.Code))
}

func TestAnswerCacheDisabled(t *testing.T) {
	// A nil cache is a no-op, not a panic.
	var cache *AnswerCache

	got, err := cache.Get(context.Background(), "bot", "q")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.NoError(t, cache.Set(context.Background(), "bot", "q", &model.ChatResult{Answer: "a"}))
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt([]string{"first chunk", "second chunk"}, "the question")

	assert.Contains(t, prompt, "first chunk\n\nsecond chunk")
	assert.Contains(t, prompt, "User question: the question")
	assert.Contains(t, prompt, "--- CONTEXT ---")
}
