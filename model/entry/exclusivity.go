package entry

import "strings"

// Exclusivity is a task's concurrency class relative to other tasks sharing
// a host runtime.
type Exclusivity string

const (
	NonExclusive     Exclusivity = "NON_EXCLUSIVE"
	ContextExclusive Exclusivity = "CONTEXT_EXCLUSIVE"
	Exclusive        Exclusivity = "EXCLUSIVE"
)

// ParseExclusivity converts text to an Exclusivity, ignoring case; empty
// text yields NonExclusive and unknown text yields "".
func ParseExclusivity(text string) Exclusivity {
	switch Exclusivity(strings.ToUpper(strings.TrimSpace(text))) {
	case "", NonExclusive:
		return NonExclusive
	case ContextExclusive:
		return ContextExclusive
	case Exclusive:
		return Exclusive
	}
	return ""
}
