package criteria

import (
	"github.com/viant/gridstore/service/dao"
)

// Fields resolves a filter term name to the entry's value; ok is false when
// the entry has no such field.
type Fields func(name string) (value string, ok bool)

// Match reports whether the entry satisfies every parameter. A missing term
// is a wildcard; a term naming a field the entry lacks never matches.
func Match(fields Fields, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter == nil {
			continue
		}
		value, ok := fields(parameter.Name)
		if !ok {
			return false
		}
		if !matchValue(value, parameter.Value) {
			return false
		}
	}
	return true
}

// Has reports whether parameters contain a term with the given name.
func Has(parameters []*dao.Parameter, name string) bool {
	for _, parameter := range parameters {
		if parameter != nil && parameter.Name == name {
			return true
		}
	}
	return false
}

func matchValue(value string, expect interface{}) bool {
	switch actual := expect.(type) {
	case string:
		return value == actual
	case []string:
		if len(actual) == 0 {
			return true
		}
		for _, candidate := range actual {
			if value == candidate {
				return true
			}
		}
		return false
	case nil:
		return true
	}
	return false
}
