// Package configuration declares data source fields in YAML files instead
// of code.
package configuration
