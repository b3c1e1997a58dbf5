package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpand(t *testing.T) {
	testCases := []struct {
		description string
		env         map[string]string
		input       string
		expect      string
	}{
		{description: "no expressions", input: "just a plain string", expect: "just a plain string"},
		{description: "single expression", env: map[string]string{"GRID_FOO": "bar"}, input: "value is ${env.GRID_FOO}", expect: "value is bar"},
		{description: "multiple expressions", env: map[string]string{"GRID_A": "1", "GRID_B": "2"}, input: "${env.GRID_A}-${env.GRID_B}-${env.GRID_A}", expect: "1-2-1"},
		{description: "unset variable", input: "unset=${env.GRID_NOTSET}-end", expect: "unset=-end"},
		{description: "missing closing brace", env: map[string]string{"GRID_X": "x"}, input: "start ${env.GRID_X and ${env.GRID_Y} end", expect: "start ${env.GRID_X and  end"},
		{description: "prefix only", input: "oops ${env.} done", expect: "oops  done"},
		{description: "plain dollar", input: "$HOME/${HOME}", expect: "$HOME/${HOME}"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			for k, v := range testCase.env {
				t.Setenv(k, v)
			}
			assert.Equal(t, testCase.expect, Expand(testCase.input))
		})
	}
}
