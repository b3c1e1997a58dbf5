package entry

import "strings"

// State is a task lifecycle state.
type State string

const (
	StateSubmitted State = "SUBMITTED"
	StateScheduled State = "SCHEDULED"
	StateRunning   State = "RUNNING"
	StateSleeping  State = "SLEEPING"
	StateFinished  State = "FINISHED"
	StateAborted   State = "ABORTED"
)

// States lists all lifecycle states in lifecycle order.
var States = []State{StateSubmitted, StateScheduled, StateRunning, StateSleeping, StateFinished, StateAborted}

// IsFinal reports whether no further work happens in the state.
func (s State) IsFinal() bool {
	return s == StateFinished || s == StateAborted
}

// IsValid reports whether s is a known state.
func (s State) IsValid() bool {
	return ParseState(string(s)) != ""
}

// ParseState converts text to a State, ignoring case; unknown text yields "".
func ParseState(text string) State {
	switch State(strings.ToUpper(strings.TrimSpace(text))) {
	case StateSubmitted:
		return StateSubmitted
	case StateScheduled:
		return StateScheduled
	case StateRunning:
		return StateRunning
	case StateSleeping:
		return StateSleeping
	case StateFinished:
		return StateFinished
	case StateAborted:
		return StateAborted
	default:
		return ""
	}
}

// stamp names the timestamp an accepted edge sets.
type stamp int

const (
	stampNone stamp = iota
	stampScheduled
	stampStarted
	stampFinished
)

// edge resolves a requested transition. ok is false for an illegal edge;
// noop is true for the accepted FINISHED -> ABORTED request, which leaves
// the task untouched.
func edge(from, to State) (s stamp, noop bool, ok bool) {
	switch to {
	case StateScheduled:
		if from == StateSubmitted {
			return stampScheduled, false, true
		}
	case StateRunning:
		switch from {
		case StateScheduled:
			return stampStarted, false, true
		case StateSleeping:
			return stampNone, false, true
		}
	case StateSleeping:
		if from == StateRunning {
			return stampNone, false, true
		}
	case StateFinished:
		if from == StateRunning || from == StateFinished {
			return stampFinished, false, true
		}
	case StateAborted:
		if from == StateFinished {
			return stampNone, true, true
		}
		if from.IsValid() {
			return stampFinished, false, true
		}
	}
	return stampNone, false, false
}

// CanTransition reports whether from -> to is an accepted edge.
func CanTransition(from, to State) bool {
	_, _, ok := edge(from, to)
	return ok
}
