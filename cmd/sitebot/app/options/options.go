// Package options contains flags and options for initializing the sitebot server.
package options

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/vivekpraj/website-to-chatbot/internal/sitebot"
	dbopts "github.com/vivekpraj/website-to-chatbot/pkg/options/db"
	httpopts "github.com/vivekpraj/website-to-chatbot/pkg/options/http"
	ingestopts "github.com/vivekpraj/website-to-chatbot/pkg/options/ingest"
	llmopts "github.com/vivekpraj/website-to-chatbot/pkg/options/llm"
	logopts "github.com/vivekpraj/website-to-chatbot/pkg/options/logger"
	milvusopts "github.com/vivekpraj/website-to-chatbot/pkg/options/milvus"
	redisopts "github.com/vivekpraj/website-to-chatbot/pkg/options/redis"
)

// ServerOptions contains the configuration options for the server.
type ServerOptions struct {
	// HTTPOptions contains HTTP server configuration.
	HTTPOptions *httpopts.Options `json:"http" mapstructure:"http"`

	// LogOptions contains logger configuration.
	LogOptions *logopts.Options `json:"log" mapstructure:"log"`

	// DBOptions contains bot registry database configuration.
	DBOptions *dbopts.Options `json:"db" mapstructure:"db"`

	// MilvusOptions contains vector index configuration.
	MilvusOptions *milvusopts.Options `json:"milvus" mapstructure:"milvus"`

	// RedisOptions contains answer cache configuration.
	RedisOptions *redisopts.Options `json:"redis" mapstructure:"redis"`

	// EmbeddingOptions contains the embedding provider configuration.
	EmbeddingOptions *llmopts.ProviderOptions `json:"embedding" mapstructure:"embedding"`

	// ChatOptions contains the chat provider configuration.
	ChatOptions *llmopts.ProviderOptions `json:"chat" mapstructure:"chat"`

	// IngestOptions contains ingestion pipeline configuration.
	IngestOptions *ingestopts.Options `json:"ingest" mapstructure:"ingest"`

	// ShutdownTimeout is the timeout for graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

// NewServerOptions creates a ServerOptions instance with default values.
func NewServerOptions() *ServerOptions {
	return &ServerOptions{
		HTTPOptions:      httpopts.NewOptions(),
		LogOptions:       logopts.NewOptions(),
		DBOptions:        dbopts.NewOptions(),
		MilvusOptions:    milvusopts.NewOptions(),
		RedisOptions:     redisopts.NewOptions(),
		EmbeddingOptions: llmopts.NewProviderOptions(),
		ChatOptions:      llmopts.NewProviderOptions(),
		IngestOptions:    ingestopts.NewOptions(),
		ShutdownTimeout:  30 * time.Second,
	}
}

// AddFlags registers all option flags on the given flag set.
func (o *ServerOptions) AddFlags(fs *pflag.FlagSet) {
	o.HTTPOptions.AddFlags(fs)
	o.LogOptions.AddFlags(fs)
	o.DBOptions.AddFlags(fs)
	o.MilvusOptions.AddFlags(fs)
	o.RedisOptions.AddFlags(fs)
	o.EmbeddingOptions.AddFlags(fs, "embedding")
	o.ChatOptions.AddFlags(fs, "chat")
	o.IngestOptions.AddFlags(fs)

	fs.DurationVar(&o.ShutdownTimeout, "shutdown-timeout", o.ShutdownTimeout, "Graceful shutdown timeout.")
}

// Complete completes all the required options.
func (o *ServerOptions) Complete() error {
	if err := o.HTTPOptions.Complete(); err != nil {
		return err
	}
	if err := o.LogOptions.Complete(); err != nil {
		return err
	}
	if err := o.EmbeddingOptions.Complete(); err != nil {
		return err
	}
	return o.ChatOptions.Complete()
}

// Validate checks whether the options in ServerOptions are valid.
func (o *ServerOptions) Validate() error {
	if err := o.HTTPOptions.Validate(); err != nil {
		return err
	}
	if err := o.LogOptions.Validate(); err != nil {
		return err
	}
	if err := o.DBOptions.Validate(); err != nil {
		return err
	}
	if o.RedisOptions.Enabled {
		if err := o.RedisOptions.Validate(); err != nil {
			return err
		}
	}

	var errs []error
	errs = append(errs, o.MilvusOptions.Validate()...)
	errs = append(errs, o.EmbeddingOptions.Validate()...)
	errs = append(errs, o.ChatOptions.Validate()...)
	errs = append(errs, o.IngestOptions.Validate()...)
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Config builds a sitebot.Config based on ServerOptions.
func (o *ServerOptions) Config() (*sitebot.Config, error) {
	return &sitebot.Config{
		HTTPOptions:      o.HTTPOptions,
		LogOptions:       o.LogOptions,
		DBOptions:        o.DBOptions,
		MilvusOptions:    o.MilvusOptions,
		RedisOptions:     o.RedisOptions,
		EmbeddingOptions: o.EmbeddingOptions,
		ChatOptions:      o.ChatOptions,
		IngestOptions:    o.IngestOptions,
		ShutdownTimeout:  o.ShutdownTimeout,
	}, nil
}
