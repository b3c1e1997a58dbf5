package progress

import (
	"sort"
	"sync"
	"time"

	"github.com/viant/gridstore/internal/clock"
	"github.com/viant/gridstore/model/entry"
	"github.com/viant/gridstore/service/event"
)

// Delta represents an incremental counter change. The fields are signed.
type Delta struct {
	Total    int
	Pending  int
	Running  int
	Finished int
	Aborted  int
}

// Progress keeps the task counters of a single context.
type Progress struct {
	ContextID string
	StartedAt time.Time

	TotalTasks    int
	PendingTasks  int
	RunningTasks  int
	FinishedTasks int
	AbortedTasks  int
}

func (p *Progress) apply(d Delta) {
	p.TotalTasks += d.Total
	p.PendingTasks += d.Pending
	p.RunningTasks += d.Running
	p.FinishedTasks += d.Finished
	p.AbortedTasks += d.Aborted
}

// Tracker aggregates counters for every context it sees events for. It is
// safe for concurrent use.
type Tracker struct {
	mu       sync.Mutex
	contexts map[string]*Progress
	onChange func(Progress)
}

// NewTracker creates a tracker; onChange, when set, is called with a copy of
// the updated counters outside the critical section.
func NewTracker(onChange func(Progress)) *Tracker {
	return &Tracker{contexts: make(map[string]*Progress), onChange: onChange}
}

// Handle applies a lifecycle event.
func (t *Tracker) Handle(evt *event.Event[event.Change]) {
	if evt == nil || evt.Context == nil || evt.Context.ContextID == "" {
		return
	}
	var d Delta
	switch evt.Context.Type {
	case event.TypeTaskSubmitted:
		d.Total++
		count(&d, evt.Data.To, 1)
	case event.TypeTaskTransitioned:
		count(&d, evt.Data.From, -1)
		count(&d, evt.Data.To, 1)
	case event.TypeTaskRemoved:
		d.Total--
		count(&d, evt.Data.From, -1)
	default:
		return
	}
	t.Update(evt.Context.ContextID, d)
}

// Update applies d to the counters of contextID.
func (t *Tracker) Update(contextID string, d Delta) {
	t.mu.Lock()
	p, ok := t.contexts[contextID]
	if !ok {
		p = &Progress{ContextID: contextID, StartedAt: clock.Now()}
		t.contexts[contextID] = p
	}
	p.apply(d)
	snapshot := *p
	cb := t.onChange
	t.mu.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy of the counters of contextID.
func (t *Tracker) Snapshot(contextID string) (Progress, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.contexts[contextID]
	if !ok {
		return Progress{}, false
	}
	return *p, true
}

// Contexts returns copies of all counters ordered by context id.
func (t *Tracker) Contexts() []Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	ret := make([]Progress, 0, len(t.contexts))
	for _, p := range t.contexts {
		ret = append(ret, *p)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].ContextID < ret[j].ContextID })
	return ret
}

func count(d *Delta, state entry.State, n int) {
	switch state {
	case entry.StateSubmitted, entry.StateScheduled:
		d.Pending += n
	case entry.StateRunning, entry.StateSleeping:
		d.Running += n
	case entry.StateFinished:
		d.Finished += n
	case entry.StateAborted:
		d.Aborted += n
	}
}
