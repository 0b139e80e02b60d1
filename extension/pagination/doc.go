// Package pagination maps the "page" and "max_results" parameters of a
// data source to its first and max results.
package pagination
