package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/sokinpui/linecut/cli"
	"github.com/sokinpui/linecut/linecut"
	"github.com/sokinpui/linecut/model"
)

func main() {
	cfg, err := cli.ParseFlags()
	if err != nil {
		if errors.Is(err, cli.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app, err := linecut.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	outcome, err := app.Execute(ctx)
	app.Close()
	if err != nil {
		if outcome.Message == "" {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		// Check for detailed error to print stack
		var detailed *linecut.DetailedError
		if errors.As(err, &detailed) {
			fmt.Fprintf(os.Stderr, "\n--- Stack Trace ---\n%s\n", detailed.Stack)
		}
		os.Exit(1)
	}
	if outcome.State == model.EmptyPattern {
		os.Exit(1)
	}
}
