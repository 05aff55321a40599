// Package app provides the sitebot server application.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vivekpraj/website-to-chatbot/cmd/sitebot/app/options"
	"github.com/vivekpraj/website-to-chatbot/internal/sitebot"
	"github.com/vivekpraj/website-to-chatbot/pkg/app"
)

const commandDesc = `Sitebot turns any website into a chatbot.

The service crawls a website, cleans and chunks the page text, indexes
the chunks as vector embeddings, and answers questions grounded in the
retrieved content.

This server provides:
  - Bot creation with a bounded same-host crawl
  - Per-bot vector indexing (Milvus or in-process)
  - Retrieval-augmented chat with source attribution
  - Support for multiple LLM providers (Gemini, Ollama)`

// NewApp creates and returns a new App object with default parameters.
func NewApp() *app.App {
	opts := options.NewServerOptions()
	return app.NewApp(
		app.WithName(sitebot.Name),
		app.WithShortDescription("Website-to-chatbot service"),
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithRunFunc(run(opts)),
	)
}

// run contains the main logic for initializing and running the server.
func run(opts *options.ServerOptions) app.RunFunc {
	return func() error {
		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		ctx := setupSignalContext()

		server, err := cfg.NewServer(ctx)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		return server.Run(ctx)
	}
}

// setupSignalContext returns a context that is cancelled on SIGINT or SIGTERM.
func setupSignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
		<-c
		os.Exit(1)
	}()
	return ctx
}
