// Package llm 提供统一的 LLM 供应商抽象层。
// 支持 Embedding 和 Chat 使用不同供应商的模型。
//
// 供应商实现保持"薄网关"语义：不做重试、不做缓存，
// 重试/退避策略由 pkg/llm/resilience 在外层按需包装。
package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// EmbeddingProvider 定义 Embedding 供应商接口。
type EmbeddingProvider interface {
	// Embed 为多个文本生成向量嵌入，返回顺序与输入一致。
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle 为单个文本生成向量嵌入。
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// Name 返回供应商名称。
	Name() string
}

// ChatProvider 定义 Chat 供应商接口。
type ChatProvider interface {
	// Chat 进行多轮对话。
	Chat(ctx context.Context, messages []Message) (string, error)

	// Generate 根据提示生成文本（单轮）。
	Generate(ctx context.Context, prompt string, systemPrompt string) (string, error)

	// Name 返回供应商名称。
	Name() string
}

// Message 表示对话中的一条消息。
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Role 定义消息角色。
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Provider 同时支持 Embedding 和 Chat 的完整供应商。
type Provider interface {
	EmbeddingProvider
	ChatProvider
}

// QuotaError 表示供应商因配额/限流拒绝请求（HTTP 429 等）。
// 与一般供应商错误区分开，调用方可以据此选择不同的退避策略和提示语。
type QuotaError struct {
	Provider string
	Detail   string
}

// Error implements the error interface.
func (e *QuotaError) Error() string {
	return fmt.Sprintf("%s: quota exhausted: %s", e.Provider, e.Detail)
}

// IsQuota reports whether err (or anything it wraps) is a QuotaError.
func IsQuota(err error) bool {
	var qe *QuotaError
	return errors.As(err, &qe)
}

// ProviderFactory 供应商工厂函数类型。
type ProviderFactory func(config map[string]any) (Provider, error)

// registry 供应商注册表。
var registry = &providerRegistry{
	providers: make(map[string]ProviderFactory),
}

type providerRegistry struct {
	mu        sync.RWMutex
	providers map[string]ProviderFactory
}

// RegisterProvider 注册完整供应商工厂。
func RegisterProvider(name string, factory ProviderFactory) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.providers[name] = factory
}

// NewProvider 根据名称创建完整供应商实例。
func NewProvider(name string, config map[string]any) (Provider, error) {
	registry.mu.RLock()
	factory, ok := registry.providers[name]
	registry.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", name)
	}

	return factory(config)
}

// NewEmbeddingProvider 根据名称创建 Embedding 供应商实例。
func NewEmbeddingProvider(name string, config map[string]any) (EmbeddingProvider, error) {
	return NewProvider(name, config)
}

// NewChatProvider 根据名称创建 Chat 供应商实例。
func NewChatProvider(name string, config map[string]any) (ChatProvider, error) {
	return NewProvider(name, config)
}

// ListProviders 列出所有已注册的供应商名称。
func ListProviders() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	names := make([]string, 0, len(registry.providers))
	for name := range registry.providers {
		names = append(names, name)
	}
	return names
}
