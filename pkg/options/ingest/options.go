// Package ingest provides options for the website ingestion pipeline.
package ingest

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/vivekpraj/website-to-chatbot/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options contains ingestion pipeline configuration.
type Options struct {
	// MaxPages bounds the number of distinct URLs a crawl may visit.
	MaxPages int `json:"max-pages" mapstructure:"max-pages"`

	// FetchTimeout is the per-page HTTP fetch timeout.
	FetchTimeout time.Duration `json:"fetch-timeout" mapstructure:"fetch-timeout"`

	// UserAgent is sent on crawl requests.
	UserAgent string `json:"user-agent" mapstructure:"user-agent"`

	// MaxChunkWords caps the word count of a single passage.
	MaxChunkWords int `json:"max-chunk-words" mapstructure:"max-chunk-words"`

	// MinLineChars drops cleaned lines shorter than this many characters.
	MinLineChars int `json:"min-line-chars" mapstructure:"min-line-chars"`

	// EmbedBatchSize is the number of chunks sent per embedding request.
	EmbedBatchSize int `json:"embed-batch-size" mapstructure:"embed-batch-size"`

	// Workers is the concurrency of the per-page clean-and-chunk fan-out.
	Workers int `json:"workers" mapstructure:"workers"`

	// TopK is the number of chunks retrieved per chat query.
	TopK int `json:"top-k" mapstructure:"top-k"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		MaxPages:       10,
		FetchTimeout:   15 * time.Second,
		UserAgent:      "sitebot/1.0",
		MaxChunkWords:  700,
		MinLineChars:   25,
		EmbedBatchSize: 100,
		Workers:        8,
		TopK:           3,
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.IntVar(&o.MaxPages, options.Join(prefixes...)+"ingest.max-pages", o.MaxPages, "Maximum distinct URLs visited per crawl.")
	fs.DurationVar(&o.FetchTimeout, options.Join(prefixes...)+"ingest.fetch-timeout", o.FetchTimeout, "Per-page HTTP fetch timeout.")
	fs.StringVar(&o.UserAgent, options.Join(prefixes...)+"ingest.user-agent", o.UserAgent, "User agent sent on crawl requests.")
	fs.IntVar(&o.MaxChunkWords, options.Join(prefixes...)+"ingest.max-chunk-words", o.MaxChunkWords, "Word cap per passage.")
	fs.IntVar(&o.MinLineChars, options.Join(prefixes...)+"ingest.min-line-chars", o.MinLineChars, "Minimum characters for a cleaned line to survive.")
	fs.IntVar(&o.EmbedBatchSize, options.Join(prefixes...)+"ingest.embed-batch-size", o.EmbedBatchSize, "Chunks per embedding request.")
	fs.IntVar(&o.Workers, options.Join(prefixes...)+"ingest.workers", o.Workers, "Page processing concurrency.")
	fs.IntVar(&o.TopK, options.Join(prefixes...)+"ingest.top-k", o.TopK, "Chunks retrieved per chat query.")
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.MaxPages <= 0 {
		errs = append(errs, fmt.Errorf("ingest.max-pages must be positive"))
	}
	if o.MaxChunkWords <= 0 {
		errs = append(errs, fmt.Errorf("ingest.max-chunk-words must be positive"))
	}
	if o.MinLineChars < 0 {
		errs = append(errs, fmt.Errorf("ingest.min-line-chars cannot be negative"))
	}
	if o.EmbedBatchSize <= 0 {
		errs = append(errs, fmt.Errorf("ingest.embed-batch-size must be positive"))
	}
	if o.Workers <= 0 {
		errs = append(errs, fmt.Errorf("ingest.workers must be positive"))
	}
	if o.TopK <= 0 {
		errs = append(errs, fmt.Errorf("ingest.top-k must be positive"))
	}
	return errs
}
