package idgen

import "github.com/google/uuid"

// NewFunc returns a new globally unique identifier.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new identifier using NewFunc.
func New() string { return NewFunc() }
