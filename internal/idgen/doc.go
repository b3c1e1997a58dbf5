// Package idgen wraps the UUID generator used for store-assigned record
// identifiers (checkpoint records). Callers treat identifiers as opaque
// strings; tests replace NewFunc to get stable directory names.
package idgen
