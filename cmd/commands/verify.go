package commands

import (
	"context"
	"fmt"
	"os"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/viant/gridstore/service/rescue"
)

// NewVerifyCommand returns the verify subcommand.
func NewVerifyCommand() *cli.Command {
	return &cli.Command{
		Name:   "verify",
		Usage:  "Rescue, dump to a scratch directory, rescue again and compare",
		Action: runVerify,
	}
}

func runVerify(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.String("dir")
	first, err := restore(ctx, cmd, dir)
	if err != nil {
		return err
	}
	scratch, err := os.MkdirTemp("", "gridstore-verify-")
	if err != nil {
		return fmt.Errorf("create scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	snapshot, err := rescue.New(ctx, scratch, rescue.WithLogger(newLogger(cmd)))
	if err != nil {
		return err
	}
	if err = first.Snapshot(ctx, snapshot); err != nil {
		return fmt.Errorf("dump %s: %w", scratch, err)
	}
	second, err := restore(ctx, cmd, scratch)
	if err != nil {
		return err
	}
	expect, actual := first.Image(ctx), second.Image(ctx)
	normalize(expect)
	normalize(actual)
	if !reflect.DeepEqual(expect, actual) {
		return fmt.Errorf("%s: rescued image differs after round trip", dir)
	}
	fmt.Printf("%s: ok (%d host runtimes, %d contexts, %d tasks, %d check points)\n", dir,
		len(expect.HostRuntimes), len(expect.Contexts), len(expect.Tasks), len(expect.CheckPoints))
	return nil
}

// normalize clears the bookkeeping stamps refreshed by every restore.
func normalize(image *rescue.Image) {
	for _, host := range image.HostRuntimes {
		host.TimeRegistered = 0
	}
	for _, c := range image.Contexts {
		c.TimeUpdated = 0
	}
	for _, task := range image.Tasks {
		task.TimeUpdated = 0
	}
}
