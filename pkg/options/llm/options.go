// Package llm provides LLM provider configuration options.
package llm

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/vivekpraj/website-to-chatbot/pkg/options"
)

var _ options.IOptions = (*ProviderOptions)(nil)

// ProviderOptions 定义 LLM 供应商配置。
// Embedding 和 Chat 可以配置不同的供应商实例。
type ProviderOptions struct {
	// Provider 供应商名称（gemini, ollama）。
	Provider string `json:"provider" mapstructure:"provider"`

	// BaseURL API 基础地址。
	BaseURL string `json:"base-url" mapstructure:"base-url"`

	// APIKey API 密钥（Gemini 需要）。
	APIKey string `json:"api-key" mapstructure:"api-key"`

	// EmbedModel 用于生成嵌入的模型。
	EmbedModel string `json:"embed-model" mapstructure:"embed-model"`

	// ChatModel 用于对话的模型。
	ChatModel string `json:"chat-model" mapstructure:"chat-model"`

	// Timeout 请求超时时间。
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// MaxRetries 韧性包装器的最大尝试次数（包括首次调用）。
	MaxRetries int `json:"max-retries" mapstructure:"max-retries"`
}

// NewProviderOptions 创建默认 LLM 供应商配置。
func NewProviderOptions() *ProviderOptions {
	return &ProviderOptions{
		Provider:   "gemini",
		EmbedModel: "text-embedding-004",
		ChatModel:  "gemini-1.5-flash",
		Timeout:    120 * time.Second,
		MaxRetries: 3,
	}
}

// ToConfigMap 转换为配置 map，用于供应商工厂。
func (o *ProviderOptions) ToConfigMap() map[string]any {
	return map[string]any{
		"base_url":    o.BaseURL,
		"api_key":     o.APIKey,
		"embed_model": o.EmbedModel,
		"chat_model":  o.ChatModel,
		"timeout":     o.Timeout,
	}
}

// AddFlags adds flags for LLM provider options to the specified FlagSet.
func (o *ProviderOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Provider, options.Join(prefixes...)+"provider", o.Provider, "LLM provider (gemini, ollama).")
	fs.StringVar(&o.BaseURL, options.Join(prefixes...)+"base-url", o.BaseURL, "LLM API base URL.")
	fs.StringVar(&o.APIKey, options.Join(prefixes...)+"api-key", o.APIKey, "LLM API key (DEPRECATED: use LLM_API_KEY env var instead).")
	fs.StringVar(&o.EmbedModel, options.Join(prefixes...)+"embed-model", o.EmbedModel, "Embedding model name.")
	fs.StringVar(&o.ChatModel, options.Join(prefixes...)+"chat-model", o.ChatModel, "Chat model name.")
	fs.DurationVar(&o.Timeout, options.Join(prefixes...)+"timeout", o.Timeout, "LLM request timeout.")
	fs.IntVar(&o.MaxRetries, options.Join(prefixes...)+"max-retries", o.MaxRetries, "LLM maximum number of attempts.")
}

// Validate validates the LLM provider options.
func (o *ProviderOptions) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Provider == "" {
		errs = append(errs, fmt.Errorf("provider is required"))
	}
	if o.EmbedModel == "" {
		errs = append(errs, fmt.Errorf("embed-model is required"))
	}
	if o.ChatModel == "" {
		errs = append(errs, fmt.Errorf("chat-model is required"))
	}
	// Gemini 供应商需要 API key
	if o.Provider == "gemini" && o.APIKey == "" {
		errs = append(errs, fmt.Errorf("api-key is required for gemini provider"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive"))
	}
	return errs
}

// Complete completes the LLM provider options with defaults.
func (o *ProviderOptions) Complete() error {
	if o.APIKey == "" {
		o.APIKey = os.Getenv("LLM_API_KEY")
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	return nil
}
