package biz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vivekpraj/website-to-chatbot/internal/model"
	"github.com/vivekpraj/website-to-chatbot/internal/pkg/crawler"
	"github.com/vivekpraj/website-to-chatbot/internal/sitebot/store"
	"github.com/vivekpraj/website-to-chatbot/pkg/errors"
	"github.com/vivekpraj/website-to-chatbot/pkg/pool"
)

func TestCreateBotPipeline(t *testing.T) {
	env := newTestEnv(t)
	srv := testSite(t)
	ctx := context.Background()

	bot, err := env.bots.CreateBot(ctx, srv.URL)
	require.NoError(t, err)

	assert.Equal(t, model.StatusReady, bot.Status)
	assert.Equal(t, 3, bot.PageCount)
	assert.Greater(t, bot.ChunkCount, 0)
	assert.NotEmpty(t, bot.BotID)

	indexed, err := env.index.Count(ctx, bot.BotID)
	require.NoError(t, err)
	assert.Equal(t, int64(bot.ChunkCount), indexed)

	// Chunk ids are {bot_id}_{ordinal}, starting at 0.
	hits, err := env.index.Query(ctx, bot.BotID, letterVec("pumps and compressors"), 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Contains(t, hits[0].ID, bot.BotID+"_")
	assert.Contains(t, hits[0].Content, "pumps")
}

func TestCreateBotIdempotent(t *testing.T) {
	env := newTestEnv(t)
	srv := testSite(t)
	ctx := context.Background()

	first, err := env.bots.CreateBot(ctx, srv.URL)
	require.NoError(t, err)
	callsAfterFirst := env.provider.embedCount()

	second, err := env.bots.CreateBot(ctx, srv.URL)
	require.NoError(t, err)

	assert.Equal(t, first.BotID, second.BotID)
	// The existing bot is reused without re-running the pipeline.
	assert.Equal(t, callsAfterFirst, env.provider.embedCount())
}

func TestCreateBotCrawlFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // unreachable seed

	_, err := env.bots.CreateBot(ctx, srv.URL)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCrawlFailed.Code))

	// The bot row survives in failed state with a reason.
	bot, gerr := env.factory.Bots().GetByWebsiteURL(ctx, srv.URL)
	require.NoError(t, gerr)
	assert.Equal(t, model.StatusFailed, bot.Status)
	assert.NotEmpty(t, bot.FailReason)
}

func TestCreateBotEmptyContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Pages fetch fine but nothing survives cleaning.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>hi</p></body></html>`))
	}))
	t.Cleanup(srv.Close)

	_, err := env.bots.CreateBot(ctx, srv.URL)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrEmptyContent.Code))

	bot, gerr := env.factory.Bots().GetByWebsiteURL(ctx, srv.URL)
	require.NoError(t, gerr)
	assert.Equal(t, model.StatusFailed, bot.Status)
}

func TestCreateBotQuotaExceeded(t *testing.T) {
	env := newTestEnv(t)
	srv := testSite(t)
	ctx := context.Background()

	env.provider.quota = true

	_, err := env.bots.CreateBot(ctx, srv.URL)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrProviderQuota.Code))

	bot, gerr := env.factory.Bots().GetByWebsiteURL(ctx, srv.URL)
	require.NoError(t, gerr)
	assert.Equal(t, model.StatusFailed, bot.Status)
}

func TestRefreshBot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// The site content changes between the first crawl and the refresh.
	var updated atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updated.Load() {
			w.Write([]byte(`<html><body><p>
				Our new catalog features laser cutters with automatic calibration.
				Each laser cutter ships with a two year service agreement.
			</p></body></html>`))
			return
		}
		w.Write([]byte(`<html><body><p>
			We build hydraulic presses for metal forming workshops worldwide.
			Every hydraulic press is certified before leaving the factory.
		</p></body></html>`))
	}))
	t.Cleanup(srv.Close)

	bot, err := env.bots.CreateBot(ctx, srv.URL)
	require.NoError(t, err)

	updated.Store(true)

	refreshed, err := env.bots.RefreshBot(ctx, bot.BotID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReady, refreshed.Status)

	// The index is reset before re-ingesting, so chunks do not pile up.
	indexed, err := env.index.Count(ctx, bot.BotID)
	require.NoError(t, err)
	assert.Equal(t, int64(refreshed.ChunkCount), indexed)

	// No chunk from the first crawl survives the refresh.
	hits, err := env.index.Query(ctx, bot.BotID, letterVec("hydraulic presses"), 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	for _, hit := range hits {
		assert.NotContains(t, hit.Content, "hydraulic")
		assert.Contains(t, hit.Content, "laser")
	}
}

func TestRefreshBotNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.bots.RefreshBot(context.Background(), "no-such-bot")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrBotNotFound.Code))
}

func TestProcessPagesCancelledContext(t *testing.T) {
	p, err := pool.NewPool("cancel-test", pool.IngestPool, &pool.Config{
		Capacity:       1,
		ExpiryDuration: time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(p.Release)

	// 占住唯一的 worker，让清洗任务先排队再被取消。
	release := make(chan struct{})
	occupied := make(chan struct{})
	require.NoError(t, p.Submit(func() {
		close(occupied)
		<-release
	}))
	<-occupied

	svc := NewBotService(nil, nil, nil, nil, p, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pages := []crawler.Page{
		{URL: "https://example.com/a", Text: "Queued page one with enough words to survive cleaning."},
		{URL: "https://example.com/b", Text: "Queued page two with enough words to survive cleaning."},
	}

	done := make(chan struct{})
	var texts []string
	go func() {
		texts, _ = svc.processPages(ctx, pages)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	close(release)

	// 被取消的任务跳过清洗但仍然计入 WaitGroup，收集阶段必须能返回。
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("processPages did not return after context cancellation")
	}
	assert.Empty(t, texts)
}

// conflictBots 模拟输掉唯一索引竞争、且赢家的行还读不回来的存储。
type conflictBots struct{}

func (conflictBots) Create(context.Context, *model.Bot) error { return gorm.ErrDuplicatedKey }
func (conflictBots) Update(context.Context, *model.Bot) error { return nil }
func (conflictBots) Get(context.Context, string) (*model.Bot, error) {
	return nil, gorm.ErrRecordNotFound
}
func (conflictBots) GetByWebsiteURL(context.Context, string) (*model.Bot, error) {
	return nil, gorm.ErrRecordNotFound
}
func (conflictBots) List(context.Context, int, int) (int64, []*model.Bot, error) {
	return 0, nil, nil
}
func (conflictBots) UpdateStatus(context.Context, string, string, string) error { return nil }
func (conflictBots) TouchUsage(context.Context, string) error                   { return nil }

type conflictFactory struct{}

func (conflictFactory) Bots() store.BotStore { return conflictBots{} }
func (conflictFactory) Close() error         { return nil }

func TestCreateBotConcurrentRowUnreadable(t *testing.T) {
	svc := NewBotService(conflictFactory{}, nil, nil, nil, nil, nil)

	_, err := svc.CreateBot(context.Background(), "https://example.com")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrBotExists.Code))
}

func TestListBots(t *testing.T) {
	env := newTestEnv(t)
	srv := testSite(t)
	ctx := context.Background()

	_, err := env.bots.CreateBot(ctx, srv.URL)
	require.NoError(t, err)

	count, bots, err := env.bots.ListBots(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	require.Len(t, bots, 1)
}
