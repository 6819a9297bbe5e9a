// idapm - plugin manager for IDA Pro
//
// Keeps a catalog of IDA plugins hosted on GitHub and installs, updates and
// removes them in IDA's plugin directories.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/asteroid-belt/idapm/internal/cli"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := cli.Execute(ctx); err != nil {
		cancel()
		os.Exit(cli.ExitCode(err))
	}
}
