package dao

// Filter term names understood by the store queries.
const (
	ContextID = "ContextID"
	TaskID    = "TaskID"
	Name      = "Name"
	HostName  = "HostName"
	State     = "State"
)

// Parameter is an optional filter term; a query without a term for a field
// matches any value of that field.
type Parameter struct {
	Name  string
	Value interface{}
}

func NewParameter(name string, values ...string) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}

// WithContextID returns a ContextID filter term.
func WithContextID(ids ...string) *Parameter { return NewParameter(ContextID, ids...) }

// WithTaskID returns a TaskID filter term.
func WithTaskID(ids ...string) *Parameter { return NewParameter(TaskID, ids...) }

// WithName returns a checkpoint Name filter term.
func WithName(names ...string) *Parameter { return NewParameter(Name, names...) }

// WithHostName returns a HostName filter term.
func WithHostName(names ...string) *Parameter { return NewParameter(HostName, names...) }

// WithState returns a State filter term.
func WithState(states ...string) *Parameter { return NewParameter(State, states...) }
