// Package render presents data source views and results as terminal
// tables or JSON documents.
package render
