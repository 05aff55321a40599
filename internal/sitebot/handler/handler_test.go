package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vivekpraj/website-to-chatbot/internal/pkg/crawler"
	"github.com/vivekpraj/website-to-chatbot/internal/sitebot/biz"
	"github.com/vivekpraj/website-to-chatbot/internal/sitebot/handler"
	"github.com/vivekpraj/website-to-chatbot/internal/sitebot/router"
	"github.com/vivekpraj/website-to-chatbot/internal/sitebot/store"
	"github.com/vivekpraj/website-to-chatbot/pkg/errors"
	"github.com/vivekpraj/website-to-chatbot/pkg/llm"
)

type stubProvider struct{}

func (stubProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, t := range texts {
		vec := make([]float32, 26)
		for _, r := range strings.ToLower(t) {
			if r >= 'a' && r <= 'z' {
				vec[r-'a']++
			}
		}
		vecs[i] = vec
	}
	return vecs, nil
}

func (s stubProvider) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (stubProvider) Chat(context.Context, []llm.Message) (string, error) { return "stub answer", nil }

func (stubProvider) Generate(context.Context, string, string) (string, error) {
	return "stub answer", nil
}

func (stubProvider) Name() string { return "stub" }

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "handler.db")), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	factory, err := store.NewFactory(db)
	require.NoError(t, err)

	index := store.NewMemoryIndex()
	provider := stubProvider{}
	cr := crawler.New(crawler.WithTimeout(5 * time.Second))

	bots := biz.NewBotService(factory, index, provider, cr, nil, nil)
	chat := biz.NewChatService(factory, index, provider, provider, nil, 3)

	engine := gin.New()
	router.Register(engine, handler.NewBotHandler(bots), handler.NewChatHandler(chat),
		router.HealthChecker{Name: "database", Check: func() error { return nil }})
	return engine
}

func siteServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>
			We build industrial robots for warehouse automation projects.
			Our support team helps customers integrate robots on site.
		</p></body></html>`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestCreateAndChatFlow(t *testing.T) {
	engine := newTestEngine(t)
	site := siteServer(t)

	w := doJSON(engine, http.MethodPost, "/v1/bots", gin.H{"website_url": site.URL})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var bot handler.BotResponse
	env := decode(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &bot))
	assert.Equal(t, "ready", bot.Status)
	assert.NotEmpty(t, bot.BotID)
	assert.Equal(t, "/v1/bots/"+bot.BotID+"/chat", bot.ChatURL)

	// Chat through the URL the create response advertised.
	w = doJSON(engine, http.MethodPost, bot.ChatURL, gin.H{"message": "tell me about your robots"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		Answer  string `json:"answer"`
		Sources []struct {
			ChunkID string `json:"chunk_id"`
			PageURL string `json:"page_url"`
		} `json:"sources"`
	}
	env = decode(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "stub answer", result.Answer)
	require.NotEmpty(t, result.Sources)
	assert.Contains(t, result.Sources[0].ChunkID, bot.BotID+"_")

	// Status endpoint reflects the finished pipeline.
	w = doJSON(engine, http.MethodGet, "/v1/bots/"+bot.BotID, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestCreateBotInvalidURL(t *testing.T) {
	engine := newTestEngine(t)

	w := doJSON(engine, http.MethodPost, "/v1/bots", gin.H{"website_url": "not a url"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errors.ErrInvalidParam.Code, decode(t, w).Code)
}

func TestGetBotNotFound(t *testing.T) {
	engine := newTestEngine(t)

	w := doJSON(engine, http.MethodGet, "/v1/bots/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, errors.ErrBotNotFound.Code, decode(t, w).Code)
}

func TestChatBotNotFound(t *testing.T) {
	engine := newTestEngine(t)

	w := doJSON(engine, http.MethodPost, "/v1/bots/missing/chat", gin.H{"message": "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChatMissingMessage(t *testing.T) {
	engine := newTestEngine(t)

	w := doJSON(engine, http.MethodPost, "/v1/bots/any/chat", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateBotUnreachableSite(t *testing.T) {
	engine := newTestEngine(t)

	site := httptest.NewServer(http.NotFoundHandler())
	site.Close()

	w := doJSON(engine, http.MethodPost, "/v1/bots", gin.H{"website_url": site.URL})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, errors.ErrCrawlFailed.Code, decode(t, w).Code)
}

func TestListBots(t *testing.T) {
	engine := newTestEngine(t)
	site := siteServer(t)

	w := doJSON(engine, http.MethodPost, "/v1/bots", gin.H{"website_url": site.URL})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(engine, http.MethodGet, "/v1/bots?limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list handler.ListBotsResponse
	env := decode(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, int64(1), list.Total)
}

func TestHealthz(t *testing.T) {
	engine := newTestEngine(t)

	w := doJSON(engine, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
