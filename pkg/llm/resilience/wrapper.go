// Package resilience 提供 LLM 调用的韧性包装器。
package resilience

import (
	"context"
	"errors"
	"net"

	"github.com/vivekpraj/website-to-chatbot/pkg/llm"
)

// ResilientEmbeddingProvider 带韧性功能的 Embedding Provider 包装器。
type ResilientEmbeddingProvider struct {
	provider llm.EmbeddingProvider
	retry    *RetryConfig
	cb       *CircuitBreaker
}

// NewResilientEmbeddingProvider 创建带韧性功能的 Embedding Provider。
func NewResilientEmbeddingProvider(
	provider llm.EmbeddingProvider,
	retryConfig *RetryConfig,
	cbConfig *CircuitBreakerConfig,
) *ResilientEmbeddingProvider {
	if retryConfig == nil {
		retryConfig = DefaultRetryConfig()
	}
	if cbConfig == nil {
		cbConfig = DefaultCircuitBreakerConfig()
	}

	if retryConfig.RetryableErrors == nil {
		retryConfig.RetryableErrors = IsRetryableError
	}

	return &ResilientEmbeddingProvider{
		provider: provider,
		retry:    retryConfig,
		cb:       NewCircuitBreaker(cbConfig),
	}
}

// Embed 为多个文本生成向量嵌入（带重试和熔断）。
func (r *ResilientEmbeddingProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var result [][]float32

	err := RetryWithCircuitBreaker(ctx, r.retry, r.cb, func() error {
		var callErr error
		result, callErr = r.provider.Embed(ctx, texts)
		return callErr
	})

	return result, err
}

// EmbedSingle 为单个文本生成向量嵌入（带重试和熔断）。
func (r *ResilientEmbeddingProvider) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	var result []float32

	err := RetryWithCircuitBreaker(ctx, r.retry, r.cb, func() error {
		var callErr error
		result, callErr = r.provider.EmbedSingle(ctx, text)
		return callErr
	})

	return result, err
}

// Name 返回供应商名称。
func (r *ResilientEmbeddingProvider) Name() string {
	return r.provider.Name() + "-resilient"
}

// CircuitBreaker 获取熔断器实例（用于监控）。
func (r *ResilientEmbeddingProvider) CircuitBreaker() *CircuitBreaker {
	return r.cb
}

// ResilientChatProvider 带韧性功能的 Chat Provider 包装器。
type ResilientChatProvider struct {
	provider llm.ChatProvider
	retry    *RetryConfig
	cb       *CircuitBreaker
}

// NewResilientChatProvider 创建带韧性功能的 Chat Provider。
func NewResilientChatProvider(
	provider llm.ChatProvider,
	retryConfig *RetryConfig,
	cbConfig *CircuitBreakerConfig,
) *ResilientChatProvider {
	if retryConfig == nil {
		retryConfig = DefaultRetryConfig()
	}
	if cbConfig == nil {
		cbConfig = DefaultCircuitBreakerConfig()
	}

	if retryConfig.RetryableErrors == nil {
		retryConfig.RetryableErrors = IsRetryableError
	}

	return &ResilientChatProvider{
		provider: provider,
		retry:    retryConfig,
		cb:       NewCircuitBreaker(cbConfig),
	}
}

// Chat 进行多轮对话（带重试和熔断）。
func (r *ResilientChatProvider) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	var result string

	err := RetryWithCircuitBreaker(ctx, r.retry, r.cb, func() error {
		var callErr error
		result, callErr = r.provider.Chat(ctx, messages)
		return callErr
	})

	return result, err
}

// Generate 根据提示生成文本（带重试和熔断）。
func (r *ResilientChatProvider) Generate(ctx context.Context, prompt string, systemPrompt string) (string, error) {
	var result string

	err := RetryWithCircuitBreaker(ctx, r.retry, r.cb, func() error {
		var callErr error
		result, callErr = r.provider.Generate(ctx, prompt, systemPrompt)
		return callErr
	})

	return result, err
}

// Name 返回供应商名称。
func (r *ResilientChatProvider) Name() string {
	return r.provider.Name() + "-resilient"
}

// CircuitBreaker 获取熔断器实例（用于监控）。
func (r *ResilientChatProvider) CircuitBreaker() *CircuitBreaker {
	return r.cb
}

// IsRetryableError 判断错误是否可重试。
//
// 配额/限流错误不重试：供应商明确拒绝，重试只会加重限流，
// 应该把错误原样抛给调用方转成 429。
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if llm.IsQuota(err) {
		return false
	}

	// 熔断器打开错误不可重试
	if errors.Is(err, ErrCircuitBreakerOpen) {
		return false
	}

	// 上下文相关错误不可重试
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// 网络超时可重试
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// DNS 错误可重试
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	// 连接错误可重试
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	// 默认不重试
	return false
}
