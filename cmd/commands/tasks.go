package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/viant/gridstore/model/entry"
	"github.com/viant/gridstore/service/dao"
)

// NewTasksCommand returns the tasks subcommand.
func NewTasksCommand() *cli.Command {
	return &cli.Command{
		Name:  "tasks",
		Usage: "List rescued tasks",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "context", Usage: "Filter by context id"},
			&cli.StringFlag{Name: "state", Usage: "Filter by lifecycle state"},
			&cli.StringFlag{Name: "path", Usage: "Filter by tree address glob, e.g. suite/**"},
		},
		Action: runTasks,
	}
}

func runTasks(ctx context.Context, cmd *cli.Command) error {
	eng, err := restore(ctx, cmd, cmd.String("dir"))
	if err != nil {
		return err
	}
	var parameters []*dao.Parameter
	if contextID := cmd.String("context"); contextID != "" {
		parameters = append(parameters, dao.WithContextID(contextID))
	}
	if state := cmd.String("state"); state != "" {
		parsed := entry.ParseState(state)
		if parsed == "" {
			return fmt.Errorf("unknown state %q", state)
		}
		parameters = append(parameters, dao.WithState(string(parsed)))
	}
	list := eng.Tasks(ctx, parameters...)
	if pattern := cmd.String("path"); pattern != "" {
		matched, err := eng.TasksByTreePath(ctx, pattern)
		if err != nil {
			return err
		}
		list = intersect(list, matched)
	}

	if len(list) == 0 {
		fmt.Println("No tasks found.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CONTEXT\tTASK\tSTATE\tHOST\tTREE ADDRESS")
	for _, t := range list {
		host := t.HostName
		if host == "" {
			host = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ContextID, t.TaskID, t.State, host, t.TreeAddress)
	}
	return w.Flush()
}

func intersect(list, other []*entry.Task) []*entry.Task {
	keys := make(map[entry.TaskKey]bool, len(other))
	for _, t := range other {
		keys[t.Key()] = true
	}
	var ret []*entry.Task
	for _, t := range list {
		if keys[t.Key()] {
			ret = append(ret, t)
		}
	}
	return ret
}
