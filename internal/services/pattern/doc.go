// Package pattern renders strftime-style directory and file patterns against a
// media timestamp and rejects results that cannot form safe path components.
package pattern
