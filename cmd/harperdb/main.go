package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/harperdb/harperdb-sdk-go/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rc := cli.NewRootCommand(os.Stdin, os.Stdout, os.Stderr)
	if err := rc.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
