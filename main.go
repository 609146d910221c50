package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"

	"github.com/minepkg/mclaunch/cmd"
	"github.com/minepkg/mclaunch/internals/ownhttp"
)

// set by goreleaser
var (
	version string
	commit  string
)

func main() {
	// replace default http client
	http.DefaultClient = ownhttp.New()

	if version != "" {
		cmd.Version = version
	}
	if commit != "" {
		cmd.Commit = commit
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	cmd.Execute(ctx)
}
