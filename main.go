// Command simcheck runs the conformance scenarios against an agent simulation backend.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/agentsim/simcheck/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, &cli.RootOptions{}, os.Args[1:])
	stop()
	os.Exit(code)
}
