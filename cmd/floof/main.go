package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/urfave/cli/v3"

	floof "github.com/floofdev/floof"
)

func main() {
	app := &cli.Command{
		Name:  "floof",
		Usage: "A development orchestrator: run tasks, watch files, reload browsers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   floof.DefaultFilename,
				Usage:   "path to the configuration file",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runTask(ctx, cmd.String("config"), "default")
		},
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "Run a specific task instead of the default one",
				ArgsUsage: "<task>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					task := cmd.Args().First()
					if task == "" {
						return fmt.Errorf("task argument is required")
					}
					return runTask(ctx, cmd.String("config"), task)
				},
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runTask(ctx context.Context, configPath, task string) error {
	cfg, err := floof.Load(configPath)
	if err != nil {
		return err
	}

	run := floof.NewRun(cfg, floof.NewPrinter(os.Stdout))

	// An interrupt cancels the whole context tree; long-running tasks (a
	// watch, a server) unwinding from that is a clean shutdown, not an
	// error.
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run.Start(sigCtx, task); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
