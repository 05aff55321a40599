// Package sitebot provides the sitebot service server implementation.
package sitebot

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/vivekpraj/website-to-chatbot/internal/pkg/crawler"
	"github.com/vivekpraj/website-to-chatbot/internal/sitebot/biz"
	"github.com/vivekpraj/website-to-chatbot/internal/sitebot/handler"
	"github.com/vivekpraj/website-to-chatbot/internal/sitebot/router"
	"github.com/vivekpraj/website-to-chatbot/internal/sitebot/store"
	"github.com/vivekpraj/website-to-chatbot/pkg/app"
	"github.com/vivekpraj/website-to-chatbot/pkg/component/db"
	"github.com/vivekpraj/website-to-chatbot/pkg/component/milvus"
	"github.com/vivekpraj/website-to-chatbot/pkg/component/redis"
	"github.com/vivekpraj/website-to-chatbot/pkg/llm"
	"github.com/vivekpraj/website-to-chatbot/pkg/llm/resilience"
	dbopts "github.com/vivekpraj/website-to-chatbot/pkg/options/db"
	httpopts "github.com/vivekpraj/website-to-chatbot/pkg/options/http"
	ingestopts "github.com/vivekpraj/website-to-chatbot/pkg/options/ingest"
	llmopts "github.com/vivekpraj/website-to-chatbot/pkg/options/llm"
	logopts "github.com/vivekpraj/website-to-chatbot/pkg/options/logger"
	milvusopts "github.com/vivekpraj/website-to-chatbot/pkg/options/milvus"
	redisopts "github.com/vivekpraj/website-to-chatbot/pkg/options/redis"
	"github.com/vivekpraj/website-to-chatbot/pkg/pool"

	// 注册 LLM 供应商工厂。
	_ "github.com/vivekpraj/website-to-chatbot/pkg/llm/gemini"
	_ "github.com/vivekpraj/website-to-chatbot/pkg/llm/ollama"
)

// Name is the name of the application.
const Name = "sitebot"

// Config contains application-related configurations.
type Config struct {
	HTTPOptions      *httpopts.Options
	LogOptions       *logopts.Options
	DBOptions        *dbopts.Options
	MilvusOptions    *milvusopts.Options
	RedisOptions     *redisopts.Options
	EmbeddingOptions *llmopts.ProviderOptions
	ChatOptions      *llmopts.ProviderOptions
	IngestOptions    *ingestopts.Options
	ShutdownTimeout  time.Duration
}

// Server represents the sitebot server.
type Server struct {
	httpSrv *http.Server
	cfg     *Config

	factory store.Factory
	index   store.VectorIndex
	pool    *pool.Pool
	rdb     *redis.Client
	dbc     *db.Client
}

// NewServer initializes and returns a new Server instance.
func (cfg *Config) NewServer(ctx context.Context) (*Server, error) {
	// 1. 初始化日志
	if err := cfg.LogOptions.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Infow("Starting sitebot service...", "version", app.GetVersion())

	// 2. 初始化数据库和 Store 层
	dbClient, err := db.NewWithContext(ctx, cfg.DBOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	factory, err := store.NewFactory(dbClient.DB())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	logger.Info("Store layer initialized")

	// 3. 初始化向量索引
	index, err := newVectorIndex(cfg.MilvusOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vector index: %w", err)
	}

	// 4. 初始化 LLM 供应商（薄网关 + 韧性包装）
	embedder, err := newEmbeddingProvider(cfg.EmbeddingOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding provider: %w", err)
	}
	chatter, err := newChatProvider(cfg.ChatOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chat provider: %w", err)
	}

	// 5. 初始化可选的回答缓存
	var rdb *redis.Client
	var cache *biz.AnswerCache
	if cfg.RedisOptions.Enabled {
		rdb, err = redis.NewWithContext(ctx, cfg.RedisOptions)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		cacheCfg := biz.DefaultAnswerCacheConfig()
		cacheCfg.TTL = cfg.RedisOptions.CacheTTL
		cache = biz.NewAnswerCache(rdb, cacheCfg)
		logger.Info("Answer cache enabled")
	}

	// 6. 初始化摄取池和爬虫
	poolCfg := pool.IngestPoolConfig()
	poolCfg.Capacity = cfg.IngestOptions.Workers
	ingestPool, err := pool.NewPool("ingest", pool.IngestPool, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize worker pool: %w", err)
	}

	cr := crawler.New(
		crawler.WithTimeout(cfg.IngestOptions.FetchTimeout),
		crawler.WithUserAgent(cfg.IngestOptions.UserAgent),
	)

	// 7. 初始化 Biz 层
	ingestCfg := &biz.IngestConfig{
		MaxPages:       cfg.IngestOptions.MaxPages,
		MaxChunkWords:  cfg.IngestOptions.MaxChunkWords,
		MinLineChars:   cfg.IngestOptions.MinLineChars,
		EmbedBatchSize: cfg.IngestOptions.EmbedBatchSize,
	}
	botService := biz.NewBotService(factory, index, embedder, cr, ingestPool, ingestCfg)
	chatService := biz.NewChatService(factory, index, embedder, chatter, cache, cfg.IngestOptions.TopK)
	logger.Info("Business layer initialized")

	// 8. 初始化 Handler 层和路由
	gin.SetMode(cfg.HTTPOptions.Mode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	checkers := []router.HealthChecker{
		{Name: "database", Check: dbClient.Health()},
	}
	if rdb != nil {
		checkers = append(checkers, router.HealthChecker{Name: "redis", Check: rdb.Health()})
	}

	router.Register(engine,
		handler.NewBotHandler(botService),
		handler.NewChatHandler(chatService),
		checkers...,
	)

	httpSrv := &http.Server{
		Addr:         cfg.HTTPOptions.Addr,
		Handler:      engine,
		ReadTimeout:  cfg.HTTPOptions.ReadTimeout,
		WriteTimeout: cfg.HTTPOptions.WriteTimeout,
		IdleTimeout:  cfg.HTTPOptions.IdleTimeout,
	}

	logger.Info("Sitebot service is ready")
	return &Server{
		httpSrv: httpSrv,
		cfg:     cfg,
		factory: factory,
		index:   index,
		pool:    ingestPool,
		rdb:     rdb,
		dbc:     dbClient,
	}, nil
}

// Run starts the server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Infow("HTTP server listening", "addr", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down sitebot service...")

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("HTTP server shutdown failed", "error", err.Error())
	}

	s.pool.Release()
	if err := s.index.Close(shutdownCtx); err != nil {
		logger.Warnw("vector index close failed", "error", err.Error())
	}
	if s.rdb != nil {
		_ = s.rdb.Close()
	}
	_ = s.factory.Close()
	_ = s.dbc.Close()

	logger.Info("Sitebot service stopped")
	return nil
}

// newVectorIndex 根据配置选择 Milvus 或进程内索引。
func newVectorIndex(opts *milvusopts.Options) (store.VectorIndex, error) {
	if !opts.Enabled {
		logger.Info("Milvus disabled, using in-process vector index")
		return store.NewMemoryIndex(), nil
	}

	client, err := milvus.New(opts)
	if err != nil {
		return nil, err
	}
	logger.Infow("Milvus vector index initialized", "address", opts.Address)
	return store.NewMilvusIndex(client, opts.Dimension), nil
}

// newEmbeddingProvider 创建带重试和熔断的 Embedding 供应商。
func newEmbeddingProvider(opts *llmopts.ProviderOptions) (llm.EmbeddingProvider, error) {
	provider, err := llm.NewEmbeddingProvider(opts.Provider, opts.ToConfigMap())
	if err != nil {
		return nil, err
	}

	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.MaxAttempts = opts.MaxRetries
	return resilience.NewResilientEmbeddingProvider(provider, retryCfg, nil), nil
}

// newChatProvider 创建带重试和熔断的 Chat 供应商。
func newChatProvider(opts *llmopts.ProviderOptions) (llm.ChatProvider, error) {
	provider, err := llm.NewChatProvider(opts.Provider, opts.ToConfigMap())
	if err != nil {
		return nil, err
	}

	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.MaxAttempts = opts.MaxRetries
	return resilience.NewResilientChatProvider(provider, retryCfg, nil), nil
}
