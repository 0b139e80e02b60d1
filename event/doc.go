// Package event provides a priority ordered observer fan-out used for the
// data source, field and driver extension points.
package event
