// Package pool 基于 ants 封装 goroutine 池。
// 摄取流水线的页面清洗和向量化通过池做受控并发。
package pool

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kart-io/logger"
	"github.com/panjf2000/ants/v2"
)

// Type defines the type of worker pool.
type Type string

const (
	// DefaultPool 默认通用池
	DefaultPool Type = "default"
	// IngestPool 摄取流水线池（页面清洗、向量化）
	IngestPool Type = "ingest"
	// BackgroundPool 后台任务池（索引重建等）
	BackgroundPool Type = "background"
)

// Config defines the configuration for the worker pool.
type Config struct {
	// Capacity 池容量（最大并发 goroutine 数）
	Capacity int
	// ExpiryDuration goroutine 空闲过期时间
	ExpiryDuration time.Duration
	// PreAlloc 是否预分配内存
	PreAlloc bool
	// Nonblocking 提交任务是否非阻塞（若池满则返回错误）
	Nonblocking bool
	// MaxBlockingTasks 当 Nonblocking=false 时，最大等待任务数（0 表示无限制）
	MaxBlockingTasks int
	// PanicHandler 恐慌处理函数
	PanicHandler func(interface{})
}

// DefaultPoolConfig 返回默认池配置
func DefaultPoolConfig() *Config {
	return &Config{
		Capacity:         1000,
		ExpiryDuration:   10 * time.Second,
		PreAlloc:         false,
		Nonblocking:      false,
		MaxBlockingTasks: 0,
	}
}

// IngestPoolConfig 返回摄取池配置。
// 摄取任务是 IO 密集的外部调用，容量压低避免拖垮供应商配额。
func IngestPoolConfig() *Config {
	return &Config{
		Capacity:         8,
		ExpiryDuration:   30 * time.Second,
		PreAlloc:         false,
		Nonblocking:      false,
		MaxBlockingTasks: 0,
	}
}

// BackgroundPoolConfig 返回后台任务池配置
func BackgroundPoolConfig() *Config {
	return &Config{
		Capacity:         50,
		ExpiryDuration:   60 * time.Second,
		PreAlloc:         false,
		Nonblocking:      true,
		MaxBlockingTasks: 100,
	}
}

// Pool represents a worker pool.
type Pool struct {
	name     string
	typ      Type
	pool     *ants.Pool
	config   *Config
	stats    *poolStatsCounter
	closed   atomic.Bool
	closedMu sync.Mutex
}

// poolStatsCounter 内部统计计数器
type poolStatsCounter struct {
	SubmittedTasks atomic.Int64
	CompletedTasks atomic.Int64
	FailedTasks    atomic.Int64
	RejectedTasks  atomic.Int64
	PanicRecovered atomic.Int64
}

// Stats contains statistics about the worker pool.
type Stats struct {
	SubmittedTasks int64
	CompletedTasks int64
	FailedTasks    int64
	RejectedTasks  int64
	PanicRecovered int64
}

// NewPool creates a new worker pool with the given configuration.
func NewPool(name string, typ Type, config *Config) (*Pool, error) {
	if config == nil {
		config = DefaultPoolConfig()
	}

	p := &Pool{
		name:   name,
		typ:    typ,
		config: config,
		stats:  &poolStatsCounter{},
	}

	pool, err := ants.NewPool(config.Capacity, buildAntsOptions(name, config)...)
	if err != nil {
		return nil, fmt.Errorf("创建 ants 池失败: %w", err)
	}
	p.pool = pool

	logger.Infow("Worker pool created",
		"name", name,
		"capacity", config.Capacity,
	)

	return p, nil
}

// buildAntsOptions 构建 ants 池选项
func buildAntsOptions(name string, config *Config) []ants.Option {
	opts := []ants.Option{
		ants.WithExpiryDuration(config.ExpiryDuration),
		ants.WithPreAlloc(config.PreAlloc),
		ants.WithNonblocking(config.Nonblocking),
		ants.WithMaxBlockingTasks(config.MaxBlockingTasks),
	}

	if config.PanicHandler != nil {
		opts = append(opts, ants.WithPanicHandler(config.PanicHandler))
	} else {
		opts = append(opts, ants.WithPanicHandler(func(p interface{}) {
			logger.Errorw("Worker panic recovered",
				"pool", name,
				"panic", p,
			)
		}))
	}

	return opts
}

// Name 返回池名称
func (p *Pool) Name() string {
	return p.name
}

// Type 返回池类型
func (p *Pool) Type() Type {
	return p.typ
}

// Cap 返回池容量
func (p *Pool) Cap() int {
	return p.pool.Cap()
}

// Running 返回正在运行的 goroutine 数量
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Free 返回可用 goroutine 数量
func (p *Pool) Free() int {
	return p.pool.Free()
}

// Submit 提交任务到池中执行
func (p *Pool) Submit(task func()) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}

	err := p.pool.Submit(func() {
		p.stats.SubmittedTasks.Add(1)

		defer func() {
			if r := recover(); r != nil {
				p.stats.PanicRecovered.Add(1)
				p.stats.FailedTasks.Add(1)
				// Re-panic to let ants PanicHandler handle it
				panic(r)
			}
			p.stats.CompletedTasks.Add(1)
		}()

		task()
	})
	if err != nil {
		if errors.Is(err, ants.ErrPoolOverload) {
			p.stats.RejectedTasks.Add(1)
			return ErrPoolOverload
		}
		p.stats.FailedTasks.Add(1)
		return err
	}

	return nil
}

// Release 关闭池并释放资源
func (p *Pool) Release() {
	p.closedMu.Lock()
	defer p.closedMu.Unlock()

	if p.closed.Load() {
		return
	}

	p.closed.Store(true)
	p.pool.Release()
	logger.Infow("Worker pool released", "name", p.name)
}

// ReleaseTimeout 带超时关闭池，等待任务完成直到超时。
func (p *Pool) ReleaseTimeout(timeout time.Duration) error {
	p.closedMu.Lock()
	defer p.closedMu.Unlock()

	if p.closed.Load() {
		return nil
	}

	p.closed.Store(true)
	return p.pool.ReleaseTimeout(timeout)
}

// Tune 动态调整池容量
func (p *Pool) Tune(size int) {
	p.pool.Tune(size)
	p.config.Capacity = size
}

// Stats 返回池统计信息快照
func (p *Pool) Stats() Stats {
	return Stats{
		SubmittedTasks: p.stats.SubmittedTasks.Load(),
		CompletedTasks: p.stats.CompletedTasks.Load(),
		FailedTasks:    p.stats.FailedTasks.Load(),
		RejectedTasks:  p.stats.RejectedTasks.Load(),
		PanicRecovered: p.stats.PanicRecovered.Load(),
	}
}
