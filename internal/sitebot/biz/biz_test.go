package biz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vivekpraj/website-to-chatbot/internal/pkg/crawler"
	"github.com/vivekpraj/website-to-chatbot/internal/sitebot/store"
	"github.com/vivekpraj/website-to-chatbot/pkg/llm"
	"github.com/vivekpraj/website-to-chatbot/pkg/pool"
)

// fakeProvider 同时实现 Embedding 和 Chat 接口。
// 嵌入向量是文本的字母频次向量，语义上"词重叠越多越相似"，
// 足以让检索测试有确定的排序。
type fakeProvider struct {
	mu         sync.Mutex
	embedCalls int
	prompts    []string
	quota      bool
	answer     string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{answer: "canned answer"}
}

func letterVec(text string) []float32 {
	vec := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			vec[r-'a']++
		}
	}
	return vec
}

func (f *fakeProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embedCalls++

	if f.quota {
		return nil, &llm.QuotaError{Provider: "fake", Detail: "rate limited"}
	}

	vecs := make([][]float32, len(texts))
	for i, t := range texts {
		vecs[i] = letterVec(t)
	}
	return vecs, nil
}

func (f *fakeProvider) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (f *fakeProvider) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	return f.answer, nil
}

func (f *fakeProvider) Generate(_ context.Context, prompt, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.answer, nil
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

func (f *fakeProvider) embedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.embedCalls
}

// testSite 启动一个三页的站点：首页链接到 /products 和 /contact。
func testSite(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`<html><body>
			<p>Acme Industrial builds heavy machinery for factories around the world.
			Our engineering team has decades of experience with rotating equipment.</p>
			<a href="/products">Products</a>
			<a href="/contact">Contact</a>
		</body></html>`))
	})
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<p>We manufacture industrial pumps and compressors for chemical plants.
			Every pump is pressure tested before it leaves the assembly line.</p>
		</body></html>`))
	})
	mux.HandleFunc("/contact", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<p>Visit our headquarters in Rotterdam for a guided facility tour.
			Support engineers answer technical questions within one business day.</p>
		</body></html>`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type testEnv struct {
	factory  store.Factory
	index    *store.MemoryIndex
	provider *fakeProvider
	bots     *BotService
	chat     *ChatService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "biz.db")), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	factory, err := store.NewFactory(db)
	require.NoError(t, err)

	p, err := pool.NewPool("biz-test", pool.IngestPool, pool.IngestPoolConfig())
	require.NoError(t, err)
	t.Cleanup(p.Release)

	index := store.NewMemoryIndex()
	provider := newFakeProvider()
	cr := crawler.New(crawler.WithTimeout(5 * time.Second))

	cfg := DefaultIngestConfig()
	cfg.EmbedBatchSize = 2 // force multiple batches in tests

	return &testEnv{
		factory:  factory,
		index:    index,
		provider: provider,
		bots:     NewBotService(factory, index, provider, cr, p, cfg),
		chat:     NewChatService(factory, index, provider, provider, nil, 3),
	}
}
