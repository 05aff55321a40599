// Package main is the entry point for the sitebot service.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/vivekpraj/website-to-chatbot/cmd/sitebot/app"
)

func main() {
	app.NewApp().Run()
}
