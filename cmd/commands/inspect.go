package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/viant/gridstore/model/entry"
)

// NewInspectCommand returns the inspect subcommand.
func NewInspectCommand() *cli.Command {
	return &cli.Command{
		Name:   "inspect",
		Usage:  "Print entry counts per kind and per task state",
		Action: runInspect,
	}
}

func runInspect(ctx context.Context, cmd *cli.Command) error {
	eng, err := restore(ctx, cmd, cmd.String("dir"))
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tCOUNT")
	fmt.Fprintf(w, "%s\t%d\n", entry.EntityHostRuntime, len(eng.HostRuntimes(ctx)))
	fmt.Fprintf(w, "%s\t%d\n", entry.EntityContext, len(eng.Contexts(ctx)))
	fmt.Fprintf(w, "%s\t%d\n", entry.EntityTask, len(eng.Tasks(ctx)))
	fmt.Fprintf(w, "%s\t%d\n", entry.EntityCheckPoint, len(eng.CheckPoints(ctx)))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "STATE\tTASKS")
	stats := eng.Stats(ctx)
	for _, state := range entry.States {
		fmt.Fprintf(w, "%s\t%d\n", state, stats[state])
	}
	return w.Flush()
}
