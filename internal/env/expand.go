// Package env expands ${env.KEY} references in configuration text.
package env

import (
	"os"
	"regexp"
)

var expression = regexp.MustCompile(`\$\{env\.([A-Za-z0-9_]*)\}`)

// Expand replaces every ${env.KEY} with the value of KEY (empty if unset).
// Malformed expressions are left as is.
func Expand(value string) string {
	return expression.ReplaceAllStringFunc(value, func(match string) string {
		return os.Getenv(expression.FindStringSubmatch(match)[1])
	})
}
