package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/viant/gridstore/service/engine"
	"github.com/viant/gridstore/service/rescue"
)

// NewRootCommand returns the top-level CLI command.
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "gridstore",
		Usage: "Inspect and verify grid store rescue directories",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "dir",
				Aliases:  []string{"d"},
				Usage:    "Rescue directory location",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			NewInspectCommand(),
			NewTasksCommand(),
			NewVerifyCommand(),
		},
	}
}

func newLogger(cmd *cli.Command) *slog.Logger {
	level := slog.LevelWarn
	if cmd.Bool("debug") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// restore loads the rescue directory into a read-only engine.
func restore(ctx context.Context, cmd *cli.Command, dir string) (*engine.Engine, error) {
	logger := newLogger(cmd)
	image, err := rescue.NewLoader(dir, rescue.WithLogger(logger)).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", dir, err)
	}
	ret, err := engine.Restore(ctx, image, engine.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", dir, err)
	}
	return ret, nil
}
