package entry

import (
	"regexp"
	"strings"

	"github.com/viant/gridstore/service/dao"
)

var (
	idPattern       = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.\-]{0,127}$`)
	hostLabel       = `[A-Za-z0-9]([A-Za-z0-9\-]{0,61}[A-Za-z0-9])?`
	hostNamePattern = regexp.MustCompile(`^` + hostLabel + `(\.` + hostLabel + `)*(:[0-9]{1,5})?$`)
)

// IsValidID reports whether text is a valid task, context or checkpoint
// identifier. Identifiers double as rescue directory names.
func IsValidID(text string) bool {
	return idPattern.MatchString(text) && text != "." && text != ".."
}

// IsValidHostName reports whether text is a valid host runtime name.
func IsValidHostName(text string) bool {
	return len(text) <= 255 && hostNamePattern.MatchString(text)
}

// ValidateContextID checks a context identifier.
func ValidateContextID(id string) error {
	if !IsValidID(id) {
		return dao.Invalid(EntityContext, id, "contextId", id)
	}
	return nil
}

// ValidateHostName checks a host runtime name.
func ValidateHostName(name string) error {
	if !IsValidHostName(name) {
		return dao.Invalid(EntityHostRuntime, name, "hostName", name)
	}
	return nil
}

// ValidateKey checks both parts of a task key.
func ValidateKey(key TaskKey) error {
	if !IsValidID(key.ContextID) {
		return dao.Invalid(EntityTask, key.String(), "contextId", key.ContextID)
	}
	if !IsValidID(key.TaskID) {
		return dao.Invalid(EntityTask, key.String(), "taskId", key.TaskID)
	}
	return nil
}

func validTreeAddress(address string) bool {
	return strings.TrimSpace(address) != ""
}
