// Package demo holds the example articles and categories served by
// dsquery, their data source definitions and the fixtures seeding them.
package demo
