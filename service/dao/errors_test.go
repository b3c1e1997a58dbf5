package dao

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Is(t *testing.T) {
	testCases := []struct {
		description string
		err         error
		kind        error
		text        string
	}{
		{
			description: "not found",
			err:         NotFound("task", "c1/t1"),
			kind:        ErrNotFound,
			text:        "task c1/t1: not found",
		},
		{
			description: "wrapped duplicate",
			err:         fmt.Errorf("submit: %w", Duplicate("context", "c1")),
			kind:        ErrDuplicateEntry,
			text:        "submit: context c1: duplicate entry",
		},
		{
			description: "validation",
			err:         Invalid("host runtime", "h 1", "hostName", "h 1"),
			kind:        ErrValidation,
			text:        `host runtime h 1: validation error: invalid hostName: "h 1"`,
		},
		{
			description: "transition",
			err:         &TransitionError{Entity: "task", Key: "c1/t1", From: "RUNNING", To: "SCHEDULED"},
			kind:        ErrInvalidStateTransition,
			text:        "task c1/t1: invalid state transition: RUNNING -> SCHEDULED",
		},
		{
			description: "corruption",
			err:         &CorruptionError{Path: "tasks/c1/t1/record.yaml", Field: "state"},
			kind:        ErrRescueCorruption,
			text:        "rescue corruption: tasks/c1/t1/record.yaml: missing state",
		},
	}

	for _, testCase := range testCases {
		assert.True(t, errors.Is(testCase.err, testCase.kind), testCase.description)
		assert.EqualValues(t, testCase.text, testCase.err.Error(), testCase.description)
	}
}

func TestCorruptionError_Cause(t *testing.T) {
	cause := errors.New("yaml: line 1")
	err := &CorruptionError{Path: "contexts/c1/record.yaml", Err: cause}
	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrRescueCorruption))
}
