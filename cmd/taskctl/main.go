package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	_ "github.com/joho/godotenv/autoload"

	"github.com/adanyl0v/task-manager/internal/client/cli"
)

func main() {
	err := run()
	if err != nil {
		if !errors.Is(err, cli.ErrReported) {
			_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	return cli.NewRootCommand().ExecuteContext(ctx)
}
