// Package gridstore keeps the authoritative state of a distributed test
// harness: execution contexts, the tasks submitted into them, the check
// points tasks reach and the host runtimes tasks run on.
//
// The store lives in memory behind the lifecycle engine and, when a rescue
// directory is configured, every accepted mutation is also written there so
// that a restarted controller can pick up where it left off:
//
//	srv, _ := gridstore.New(ctx, gridstore.WithRescueURL("/var/lib/grid"))
//	eng := srv.Engine()
//	_, _ = eng.OpenContext(ctx, &entry.Context{ContextID: "nightly", Open: true})
//	_, _ = eng.SubmitTask(ctx, &entry.Task{ContextID: "nightly", TaskID: "t1", TreeAddress: "suite/server"})
//
//	// after a crash
//	srv, err := gridstore.Rescue(ctx, "/var/lib/grid")
//
// Lifecycle events are consumed through srv.Events(), for example by a
// progress.Tracker run as an event.Listener handler.
package gridstore
